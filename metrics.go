package lodestone

import (
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
)

const (
	metricNamespace   = "AWS/RDS"
	metricWriteIOPS   = "WriteIOPS"
	metricFreeStorage = "FreeStorageSpace"
	statSum           = "Sum"
	statAverage       = "Average"

	// one datapoint per day over the trailing month
	metricPeriod = 86400
	lookbackDays = 30

	bytesPerGB = float64(1024 * 1024 * 1024)
)

// getMetricSeries issues one GetMetricStatistics query for the named
// RDS metric against a single instance over the survey window. A
// failed query is not fatal to the run; it is logged and normalized
// to an empty series, the same as CloudWatch returning no datapoints.
func (s *Survey) getMetricSeries(instanceID, metricName, statistic string) []*cloudwatch.Datapoint {
	svc := cloudwatch.New(s.session)
	input := cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(metricNamespace),
		MetricName: aws.String(metricName),
		Dimensions: []*cloudwatch.Dimension{
			{
				Name:  aws.String("DBInstanceIdentifier"),
				Value: aws.String(instanceID),
			},
		},
		StartTime:  aws.Time(s.windowStart),
		EndTime:    aws.Time(s.windowEnd),
		Period:     aws.Int64(metricPeriod),
		Statistics: []*string{aws.String(statistic)},
	}
	results, err := svc.GetMetricStatistics(&input)
	if err != nil {
		s.log.Warn(
			"error getting metric, treating as no data",
			"metric", metricName, "instance", instanceID, "error", err.Error(),
		)
		return nil
	}
	return results.Datapoints
}

// seriesValues extracts the named statistic from a datapoint series
// in chronological order. CloudWatch does not guarantee datapoint
// ordering so the series is sorted by timestamp first; first/last
// growth math depends on it.
func seriesValues(points []*cloudwatch.Datapoint, statistic string) (values []float64) {
	sorted := make([]*cloudwatch.Datapoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(*sorted[j].Timestamp)
	})
	for _, point := range sorted {
		switch statistic {
		case statSum:
			if point.Sum != nil {
				values = append(values, *point.Sum)
			}
		case statAverage:
			if point.Average != nil {
				values = append(values, *point.Average)
			}
		}
	}
	return values
}

// writeIOStats reduces a write-IO series to its total and the daily
// average over the days that reported data. An empty series reduces
// to zero, never an error.
func writeIOStats(values []float64) (total, avgDaily float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		total += v
	}
	avgDaily = total / float64(len(values))
	return total, avgDaily
}

// storageGrowth estimates data growth from a chronological free-space
// series in GB. Shrinking free space is growth, so growth is first
// minus last, clamped at zero when free space grew instead. Fewer
// than two datapoints means growth cannot be estimated and ok is
// false; callers render that as "N/A" rather than a number.
func storageGrowth(valuesGB []float64) (growthGB, avgDailyGB float64, ok bool) {
	if len(valuesGB) < 2 {
		return 0, 0, false
	}
	growthGB = valuesGB[0] - valuesGB[len(valuesGB)-1]
	if growthGB < 0 {
		growthGB = 0
	}
	avgDailyGB = growthGB / lookbackDays
	return growthGB, avgDailyGB, true
}

func bytesToGB(values []float64) (gb []float64) {
	for _, v := range values {
		gb = append(gb, v/bytesPerGB)
	}
	return gb
}
