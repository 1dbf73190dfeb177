package lodestone

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

func TestFilenamesEmbedRunTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "aurora_cost_analysis_20240102_150405.csv",
		reportFilename("aurora_cost_analysis", ts))
	assert.Equal(t, "aurora_cost_analysis_20240102_150405_summary.txt",
		summaryFilename("aurora_cost_analysis", ts))
}

func TestProspectDumpString(t *testing.T) {
	t.Run("WithGrowthData", func(t *testing.T) {
		p := Prospect{
			ClusterToken:     "red-aaaaaaaaaaaa",
			InstanceToken:    "red-bbbbbbbbbbbb",
			Engine:           "aurora-mysql",
			EngineVersion:    "8.0.mysql_aurora.3.05.2",
			InstanceClass:    "db.r6g.large",
			Role:             roleWriter,
			TotalWriteIO:     600,
			AvgDailyWriteIO:  200,
			StartFreeBytes:   500 * bytesPerGB,
			EndFreeBytes:     300 * bytesPerGB,
			GrowthGB:         200,
			AvgDailyGrowthGB: 6.6666,
			HasGrowth:        true,
		}
		row := p.dumpString()
		assert.Equal(t, []string{
			"red-aaaaaaaaaaaa", "red-bbbbbbbbbbbb",
			"aurora-mysql", "8.0.mysql_aurora.3.05.2",
			"db.r6g.large", "writer",
			"600", "200",
			"536870912000", "322122547200",
			"500.00", "300.00",
			"200.00", "6.67",
		}, row)
	})

	t.Run("MissingGrowthRendersSentinel", func(t *testing.T) {
		p := Prospect{
			ClusterToken:  "-",
			InstanceToken: "red-cccccccccccc",
			Role:          roleStandalone,
		}
		row := p.dumpString()
		assert.Equal(t, "N/A", row[12])
		assert.Equal(t, "N/A", row[13])
		assert.Equal(t, "0", row[8])
		assert.Equal(t, "0.00", row[10])
	})
}

func TestExportProspects(t *testing.T) {
	t.Run("NoFindingsStillWritesHeader", func(t *testing.T) {
		s := Survey{log: discardLogger()}
		s.outfileReport = filepath.Join(t.TempDir(), "report.csv")

		require.NoError(t, s.ExportProspects())

		file, err := os.Open(s.outfileReport)
		require.NoError(t, err)
		defer file.Close()
		records, err := csv.NewReader(file).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "ClusterName", records[0][0])
		assert.Len(t, records[0], 14)
	})

	t.Run("OneRowPerProspect", func(t *testing.T) {
		s := Survey{log: discardLogger()}
		s.outfileReport = filepath.Join(t.TempDir(), "report.csv")
		s.Prospects = []*Prospect{
			{InstanceToken: "red-111111111111", Role: roleWriter},
			{InstanceToken: "red-222222222222", Role: roleReader},
		}

		require.NoError(t, s.ExportProspects())

		file, err := os.Open(s.outfileReport)
		require.NoError(t, err)
		defer file.Close()
		records, err := csv.NewReader(file).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "red-111111111111", records[1][1])
		assert.Equal(t, "reader", records[2][5])
	})
}

func TestSummary(t *testing.T) {
	t.Run("RollsUpTotalsAndExcludesMissingGrowth", func(t *testing.T) {
		s := Survey{log: discardLogger(), writeIORate: 0.20, storageRate: 0.10}
		s.account = "123456789012"
		s.windowEnd = time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC)
		s.Prospects = []*Prospect{
			{Engine: "aurora-mysql", TotalWriteIO: 3000000, GrowthGB: 60, HasGrowth: true},
			{Engine: "aurora-mysql", TotalWriteIO: 1000000},
		}
		s.setSummary()

		text := strings.Join(s.GetSummary(), "\n")
		assert.Contains(t, text, "found 2 instances")
		assert.Contains(t, text, "Total write IO: 4000000")
		assert.Contains(t, text, "Total data growth: 60.00 GB")
		assert.Contains(t, text, "Average daily data growth: 2.00 GB")
		assert.Contains(t, text, "1 instances had too little storage data")
		// 4M writes at $0.20/M plus 60 GB at $0.10
		assert.Contains(t, text, "$6.80 per month")
	})

	t.Run("EmptySurvey", func(t *testing.T) {
		s := Survey{log: discardLogger()}
		s.setSummary()
		text := strings.Join(s.GetSummary(), "\n")
		assert.Contains(t, text, "found 0 instances")
		assert.Contains(t, text, "No matching Aurora clusters or instances were found.")
	})

	t.Run("PreviewTruncatesAfterFive", func(t *testing.T) {
		s := Survey{log: discardLogger(), writeIORate: 0.20, storageRate: 0.10}
		for i := 0; i < 7; i++ {
			s.Prospects = append(s.Prospects, &Prospect{Engine: "aurora-postgresql"})
		}
		s.setSummary()
		text := strings.Join(s.GetSummary(), "\n")
		assert.Contains(t, text, "... and 2 more instances")
	})
}

func TestExportSummary(t *testing.T) {
	s := Survey{log: discardLogger()}
	s.outfileSummary = filepath.Join(t.TempDir(), "summary.txt")
	s.summary = []string{"line one", "line two"}

	require.NoError(t, s.ExportSummary())

	data, err := os.ReadFile(s.outfileSummary)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}
