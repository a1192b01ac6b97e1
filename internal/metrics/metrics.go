package metrics

import "sync/atomic"

var analysesSucceeded int64
var analysesFailed int64
var reportsSaved int64

func IncAnalysisSucceeded() { atomic.AddInt64(&analysesSucceeded, 1) }
func IncAnalysisFailed()    { atomic.AddInt64(&analysesFailed, 1) }
func IncReportSaved()       { atomic.AddInt64(&reportsSaved, 1) }

func Snapshot() map[string]int64 {
	return map[string]int64{
		"analyses_succeeded": atomic.LoadInt64(&analysesSucceeded),
		"analyses_failed":    atomic.LoadInt64(&analysesFailed),
		"reports_saved":      atomic.LoadInt64(&reportsSaved),
	}
}
