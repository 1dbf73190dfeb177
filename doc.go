// Package lodestone seeks to help you understand your AWS bill by
// surveying the Aurora clusters in an account and estimating their
// write-IO volume and storage growth from 30 days of CloudWatch
// metrics. The findings are exported as a redacted CSV report that is
// safe to share outside the team that owns the account.
//
//   Note: A lodestone is the naturally magnetized mineral that early
//   prospectors' compasses were built from. This tool points at where
//   the write traffic is, hence the struct names.
//
// Cost Overview
//
// Aurora bills for IO requests and for consumed storage on top of the
// instance hours. A write-heavy cluster can accumulate a surprising IO
// bill, and storage only ever grows. Neither shows up clearly in the
// instance-level view of the console, so teams tend to notice months
// later on the invoice.
//
// This tool pulls the WriteIOPS and FreeStorageSpace metrics for every
// Aurora instance over the trailing 30 days, reduces them to totals,
// daily averages, and a growth estimate, and rolls the account-level
// numbers up into a summary with a rough monthly cost figure.
//
// Growth is estimated from the change in free storage space. That is
// an approximation; verify against actual Aurora volume usage before
// acting on the numbers. Global Database replication also adds write
// IO cost that this survey does not see.
//
// Redaction
//
// Cluster and instance identifiers are replaced with short stable hash
// tokens before anything is written to the report. The same identifier
// always produces the same token so reports from different runs can be
// correlated, but the original names never leave the account.
//
// Usage
//
// Create a lodestone.Survey and call the Start() method on it. After
// the survey is complete the findings can be exported with
// ExportProspects() and ExportSummary(), and a human-readable rollup
// collected with GetSummary().
//
// Sample
//
// Below is a sample main package you could use to start a lodestone
// Survey and collect results.
//
//   package main
//
//   import (
//   	"fmt"
//
//   	"github.com/GESkunkworks/lodestone"
//   	"github.com/aws/aws-sdk-go/aws/session"
//   	"github.com/inconshreveable/log15"
//   )
//
//   func main() {
//   	sess := session.Must(session.NewSessionWithOptions(session.Options{
//   		SharedConfigState: session.SharedConfigEnable,
//   	}))
//   	logger := log15.New()
//   	svyInput := lodestone.SurveyInput{
//   		Session: sess,
//   		Logger:  &logger,
//   	}
//   	svy, err := lodestone.New(&svyInput)
//   	if err != nil { panic(err) }
//   	err = svy.Start()
//   	if err != nil { panic(err) }
//   	for _, line := range svy.GetSummary() {
//   		fmt.Println(line)
//   	}
//   }
package lodestone
