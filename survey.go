package lodestone

import (
	"errors"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/inconshreveable/log15"
)

const (
	roleWriter     = "writer"
	roleReader     = "reader"
	roleStandalone = "standalone"
)

// clusterInfo is a read-only snapshot of one DescribeDBClusters result.
type clusterInfo struct {
	identifier    string
	engine        string
	engineVersion string
	// member instance id -> writer/reader
	memberRoles map[string]string
}

// instanceInfo is a read-only snapshot of one DescribeDBInstances result.
type instanceInfo struct {
	identifier    string
	instanceClass string
	engine        string
	engineVersion string
	clusterID     string
}

// A Survey contains the properties and methods necessary to analyze
// the Aurora clusters in an AWS account and estimate their write-IO
// volume and storage growth over the trailing 30 days. Create a
// SurveyInput object and pass it to this package's New method to get
// a new Survey. From there call the Start method of the Survey.
// When that is complete the findings can be exported using other
// methods.
type Survey struct {
	// Prospects are the per-instance findings of the survey: one
	// entry per Aurora instance with its aggregated write-IO and
	// storage-growth figures and redacted identifiers. This property
	// is exported so that it could be marshalled to another format
	// if the ExportProspects CSV format is not ideal
	Prospects []*Prospect

	account        string
	session        *session.Session
	log            log15.Logger
	engines        []string
	windowStart    time.Time
	windowEnd      time.Time
	writeIORate    float64
	storageRate    float64
	outfileReport  string
	outfileSummary string
	summary        []string
}

// Start kicks off the survey. After this completes the data can
// be exported.
func (s *Survey) Start() (err error) {
	s.windowEnd = time.Now().UTC()
	s.windowStart = s.windowEnd.AddDate(0, 0, -lookbackDays)
	s.log.Info(
		"surveying metric window",
		"start", s.windowStart.Format("2006-01-02 15:04:05"),
		"end", s.windowEnd.Format("2006-01-02 15:04:05"),
	)
	err = s.getAccountNumber()
	if err != nil {
		return err
	}
	clusters, err := s.describeClusters()
	if err != nil {
		return err
	}
	instances, err := s.describeInstances()
	if err != nil {
		return err
	}
	if len(clusters) == 0 && len(instances) == 0 {
		s.log.Info("no Aurora resources found in account", "account", s.account)
	}
	s.buildProspects(clusters, instances)
	s.setSummary()
	return err
}

func (s *Survey) getAccountNumber() (err error) {
	s.log.Debug("getting account number")
	svcSts := sts.New(s.session)
	gcii := sts.GetCallerIdentityInput{}
	gci, err := svcSts.GetCallerIdentity(&gcii)
	if err != nil {
		return err
	}
	s.account = *gci.Account
	return err
}

// describeClusters describes all DB clusters for the given session
// including pagination handling and filters them down to the engine
// allow-list. It returns a slice of clusterInfo snapshots with member
// roles resolved as well as any errors.
func (s *Survey) describeClusters() (clusters []clusterInfo, err error) {
	s.log.Info("grabbing all DB clusters")
	svc := rds.New(s.session)
	input := rds.DescribeDBClustersInput{}
	pageNum := 0
	err = svc.DescribeDBClustersPages(&input,
		func(page *rds.DescribeDBClustersOutput, lastPage bool) bool {
			pageNum++
			s.log.Debug("handling cluster results", "page", pageNum)
			for _, cluster := range page.DBClusters {
				if cluster.Engine == nil || !containsString(s.engines, *cluster.Engine) {
					continue
				}
				ci := clusterInfo{
					identifier:  *cluster.DBClusterIdentifier,
					engine:      *cluster.Engine,
					memberRoles: make(map[string]string),
				}
				if cluster.EngineVersion != nil {
					ci.engineVersion = *cluster.EngineVersion
				}
				for _, member := range cluster.DBClusterMembers {
					if member.DBInstanceIdentifier == nil {
						continue
					}
					role := roleReader
					if member.IsClusterWriter != nil && *member.IsClusterWriter {
						role = roleWriter
					}
					ci.memberRoles[*member.DBInstanceIdentifier] = role
				}
				clusters = append(clusters, ci)
			}
			return true
		})
	if err != nil {
		return clusters, err
	}
	s.log.Info("found matching clusters", "count", len(clusters))
	return clusters, err
}

// describeInstances describes all DB instances for the given session
// including pagination handling and filters them down to the engine
// allow-list. Cluster membership is captured so instances can later be
// grouped under their cluster or treated as standalone.
func (s *Survey) describeInstances() (instances []instanceInfo, err error) {
	s.log.Debug("grabbing all DB instances")
	svc := rds.New(s.session)
	input := rds.DescribeDBInstancesInput{}
	pageNum := 0
	err = svc.DescribeDBInstancesPages(&input,
		func(page *rds.DescribeDBInstancesOutput, lastPage bool) bool {
			pageNum++
			s.log.Debug("handling instance results", "page", pageNum)
			for _, inst := range page.DBInstances {
				if inst.Engine == nil || !containsString(s.engines, *inst.Engine) {
					continue
				}
				ii := instanceInfo{
					identifier: *inst.DBInstanceIdentifier,
					engine:     *inst.Engine,
				}
				if inst.DBInstanceClass != nil {
					ii.instanceClass = *inst.DBInstanceClass
				}
				if inst.EngineVersion != nil {
					ii.engineVersion = *inst.EngineVersion
				}
				if inst.DBClusterIdentifier != nil {
					ii.clusterID = *inst.DBClusterIdentifier
				}
				instances = append(instances, ii)
			}
			return true
		})
	if err != nil {
		return instances, err
	}
	s.log.Info("found matching instances", "count", len(instances))
	return instances, err
}

// buildProspects walks each cluster's member instances and then any
// standalone instances, pulling and aggregating the two cost metrics
// for each. Instances are processed sequentially to completion so no
// intermediate state is shared between them.
func (s *Survey) buildProspects(clusters []clusterInfo, instances []instanceInfo) {
	for _, cluster := range clusters {
		s.log.Info("analyzing cluster", "cluster", cluster.identifier, "engine", cluster.engine)
		members := 0
		for _, inst := range instances {
			if inst.clusterID != cluster.identifier {
				continue
			}
			members++
			role, ok := cluster.memberRoles[inst.identifier]
			if !ok {
				role = roleReader
			}
			engineVersion := cluster.engineVersion
			if engineVersion == "" {
				engineVersion = inst.engineVersion
			}
			s.Prospects = append(s.Prospects, s.buildProspect(inst, cluster.identifier, engineVersion, role))
		}
		if members == 0 {
			s.log.Info("no instances found in cluster", "cluster", cluster.identifier)
		}
	}
	for _, inst := range instances {
		if inst.clusterID != "" {
			continue
		}
		s.Prospects = append(s.Prospects, s.buildProspect(inst, "", inst.engineVersion, roleStandalone))
	}
}

// buildProspect pulls both metric series for one instance, reduces
// them, and returns the redacted report row. Metric failures degrade
// to empty series inside getMetricSeries so this never errors.
func (s *Survey) buildProspect(inst instanceInfo, clusterID, engineVersion, role string) *Prospect {
	s.log.Info("analyzing instance", "instance", inst.identifier, "role", role)
	s.log.Debug("querying write IO data", "instance", inst.identifier)
	writeVals := seriesValues(s.getMetricSeries(inst.identifier, metricWriteIOPS, statSum), statSum)
	totalWriteIO, avgDailyWriteIO := writeIOStats(writeVals)

	s.log.Debug("querying storage data", "instance", inst.identifier)
	storageVals := seriesValues(s.getMetricSeries(inst.identifier, metricFreeStorage, statAverage), statAverage)

	p := Prospect{
		ClusterToken:    "-",
		InstanceToken:   Redact(inst.identifier),
		Engine:          inst.engine,
		EngineVersion:   engineVersion,
		InstanceClass:   inst.instanceClass,
		Role:            role,
		TotalWriteIO:    totalWriteIO,
		AvgDailyWriteIO: avgDailyWriteIO,
	}
	if clusterID != "" {
		p.ClusterToken = Redact(clusterID)
	}
	if len(storageVals) > 0 {
		p.StartFreeBytes = storageVals[0]
		p.EndFreeBytes = storageVals[len(storageVals)-1]
	}
	p.GrowthGB, p.AvgDailyGrowthGB, p.HasGrowth = storageGrowth(bytesToGB(storageVals))
	s.log.Info(
		"instance analyzed",
		"instance", inst.identifier,
		"totalWriteIO", totalWriteIO,
		"avgDailyWriteIO", avgDailyWriteIO,
		"growthGB", p.GrowthGB,
		"hasGrowthData", p.HasGrowth,
	)
	return &p
}

// SurveyInput provides configuration inputs for starting a new
// Survey to analyze Aurora write-IO and storage-growth cost.
type SurveyInput struct {
	// AWS Session to use for credentials for this survey.
	//
	// Session is a required field
	Session *session.Session

	// Engine names that clusters and instances must match to be
	// included in the survey.
	// Default: ["aurora-mysql", "aurora-postgresql"]
	Engines []string

	// Prefix for the report and summary output filenames. The run
	// timestamp is appended so repeated runs never collide.
	// Default: "aurora_cost_analysis"
	OutfilePrefix *string

	// Survey uses log15 (https://github.com/inconshreveable/log15)
	// as an opinioned logging framework. A Logger is required.
	Logger *log15.Logger

	// This is the price per million write IO requests used in
	// calculating the cost estimate.
	// Default: 0.20
	WriteIORate *float64

	// This is the storage GB-month rate used in calculating
	// the cost estimate.
	// Default: 0.10
	StorageRate *float64
}

// New returns a Survey object whose methods can be called to perform
// an Aurora cost analysis. This method accepts a SurveyInput struct
// which can be used to setup the Survey inputs. This method will set
// any default values for any property that was not specified in the
// SurveyInput object.
func New(input *SurveyInput) (svy *Survey, err error) {
	var s Survey

	if input.Session == nil {
		err = errors.New("Session is required")
		return &s, err
	}
	s.session = input.Session

	if input.Engines == nil {
		input.Engines = []string{"aurora-mysql", "aurora-postgresql"}
	}
	s.engines = input.Engines

	DefaultOutfilePrefix := "aurora_cost_analysis"
	if input.OutfilePrefix == nil {
		input.OutfilePrefix = &DefaultOutfilePrefix
	}
	now := time.Now()
	s.outfileReport = reportFilename(*input.OutfilePrefix, now)
	s.outfileSummary = summaryFilename(*input.OutfilePrefix, now)

	if input.Logger == nil {
		err = errors.New("log15 logger is required")
		return &s, err
	}
	s.log = *input.Logger

	DefaultWriteIORate := 0.20
	if input.WriteIORate == nil {
		input.WriteIORate = &DefaultWriteIORate
	}
	s.writeIORate = *input.WriteIORate

	DefaultStorageRate := 0.10
	if input.StorageRate == nil {
		input.StorageRate = &DefaultStorageRate
	}
	s.storageRate = *input.StorageRate
	return &s, err
}
