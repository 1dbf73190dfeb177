package lodestone

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Prospect holds the flattened, redacted, aggregated findings for a
// single Aurora instance:
//   - which cluster it belongs to and its role within it
//     (or standalone when it belongs to none)
//   - total write IO over the survey window and the daily average
//   - first and last observed free storage, and the data growth
//     estimated from their difference
//
// Identifier fields carry redaction tokens, never the original names.
type Prospect struct {
	ClusterToken  string
	InstanceToken string
	Engine        string
	EngineVersion string
	InstanceClass string
	Role          string

	TotalWriteIO    float64
	AvgDailyWriteIO float64

	// raw bytes of the first and last free-space datapoints
	StartFreeBytes float64
	EndFreeBytes   float64

	GrowthGB         float64
	AvgDailyGrowthGB float64

	// HasGrowth is false when the storage series had fewer than two
	// datapoints; growth columns render as "N/A" in that case
	HasGrowth bool
}

// dumpString is a method to export the Prospect object as a CSV string
func (p *Prospect) dumpString() (s []string) {
	growth := "N/A"
	avgGrowth := "N/A"
	if p.HasGrowth {
		growth = strconv.FormatFloat(p.GrowthGB, 'f', 2, 64)
		avgGrowth = strconv.FormatFloat(p.AvgDailyGrowthGB, 'f', 2, 64)
	}
	s = []string{
		p.ClusterToken,
		p.InstanceToken,
		p.Engine,
		p.EngineVersion,
		p.InstanceClass,
		p.Role,
		strconv.FormatFloat(p.TotalWriteIO, 'f', 0, 64),
		strconv.FormatFloat(p.AvgDailyWriteIO, 'f', 0, 64),
		strconv.FormatFloat(p.StartFreeBytes, 'f', 0, 64),
		strconv.FormatFloat(p.EndFreeBytes, 'f', 0, 64),
		strconv.FormatFloat(p.StartFreeBytes/bytesPerGB, 'f', 2, 64),
		strconv.FormatFloat(p.EndFreeBytes/bytesPerGB, 'f', 2, 64),
		growth,
		avgGrowth,
	}
	return s
}

func reportFilename(prefix string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, ts.Format("20060102_150405"))
}

func summaryFilename(prefix string, ts time.Time) string {
	return fmt.Sprintf("%s_%s_summary.txt", prefix, ts.Format("20060102_150405"))
}

// ExportProspects takes all of the current prospects associated with
// the current Survey (instances with aggregated cost metrics) and
// writes them to a csv of the filename that's set upon Survey
// creation. A survey that found no instances still writes the header
// so consumers always get a well-formed file.
func (s *Survey) ExportProspects() (err error) {
	csvfile, err := os.Create(s.outfileReport)
	if err != nil {
		return err
	}
	csvwriter := csv.NewWriter(csvfile)
	header := []string{
		"ClusterName", "InstanceID", "Engine", "EngineVersion",
		"InstanceClass", "Role",
		"TotalWriteIO30d", "AvgDailyWriteIO",
		"StartFreeStorageBytes", "EndFreeStorageBytes",
		"StartFreeStorageGB", "EndFreeStorageGB",
		"StorageGrowthGB", "AvgDailyGrowthGB"}
	csvwriter.Write(header)
	for _, p := range s.Prospects {
		row := p.dumpString()
		csvwriter.Write(row)
	}
	csvwriter.Flush()
	csvfile.Close()
	s.log.Info("wrote prospects to file", "filename", s.outfileReport)
	return err
}

// ExportSummary takes the current analysis summary and writes it to
// outfile.
func (s *Survey) ExportSummary() (err error) {
	file, err := os.Create(s.outfileSummary)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, line := range s.GetSummary() {
		_, err = file.WriteString(line + "\n")
		if err != nil {
			return err
		}
	}
	s.log.Info("wrote summary to file", "filename", s.outfileSummary)
	return err
}

// GetSummary takes all of the information acquired during the
// Survey and returns a string slice containing a human-readable
// account-level rollup of the findings
func (s *Survey) GetSummary() (msg []string) {
	return s.summary
}

// setSummary takes all of the information acquired during the
// Survey and sets a string slice containing a human-readable
// account-level rollup of the findings including a cost estimate
func (s *Survey) setSummary() {
	var msg []string
	var totalWriteIO float64
	var totalGrowthGB float64
	var engines []string
	var countNoGrowthData int
	for _, p := range s.Prospects {
		totalWriteIO += p.TotalWriteIO
		engines = append(engines, p.Engine)
		if p.HasGrowth {
			totalGrowthGB += p.GrowthGB
		} else {
			countNoGrowthData++
		}
	}
	engines = dedupeString(engines)

	intro := fmt.Sprintf("Aurora cost survey of account %s over the %d days "+
		"ending %s found %d instances across engines %s.",
		s.account, lookbackDays,
		s.windowEnd.Format("2006-01-02"),
		len(s.Prospects), strings.Join(engines, "|"))
	msg = append(msg, intro)
	if len(s.Prospects) == 0 {
		msg = append(msg, "No matching Aurora clusters or instances were found.")
		s.summary = msg
		return
	}
	msg = append(msg, fmt.Sprintf("Total write IO: %.0f", totalWriteIO))
	msg = append(msg, fmt.Sprintf("Average daily write IO: %.0f", totalWriteIO/lookbackDays))
	msg = append(msg, fmt.Sprintf("Total data growth: %.2f GB", totalGrowthGB))
	msg = append(msg, fmt.Sprintf("Average daily data growth: %.2f GB", totalGrowthGB/lookbackDays))
	if countNoGrowthData > 0 {
		msg = append(msg, fmt.Sprintf(
			"%d instances had too little storage data to estimate growth "+
				"and were excluded from the growth totals.", countNoGrowthData))
	}
	// now add cost analysis
	ioCost := totalWriteIO / 1000000.0 * s.writeIORate
	storageCost := totalGrowthGB * s.storageRate
	est := fmt.Sprintf(
		"At a per million write IO rate of $%f and a per GB-month "+
			"storage rate of $%f the surveyed activity adds an estimated "+
			"$%.2f per month ($%.2f IO, $%.2f storage). Growth is estimated "+
			"from free storage space so verify against actual Aurora volume "+
			"usage before acting on it.",
		s.writeIORate, s.storageRate, ioCost+storageCost, ioCost, storageCost)
	msg = append(msg, est)

	msg = append(msg, "Preview of findings:")
	for i, p := range s.Prospects {
		if i >= 5 {
			msg = append(msg, fmt.Sprintf("... and %d more instances", len(s.Prospects)-5))
			break
		}
		growth := "N/A"
		if p.HasGrowth {
			growth = strconv.FormatFloat(p.GrowthGB, 'f', 2, 64)
		}
		msg = append(msg, fmt.Sprintf(
			"\t%s/%s writeIO=%.0f growthGB=%s",
			p.ClusterToken, p.InstanceToken, p.TotalWriteIO, growth))
	}
	s.summary = msg
}
