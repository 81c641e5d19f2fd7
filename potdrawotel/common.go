package potdrawotel

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/castaneai/potdraw"
)

const (
	scopeName = "github.com/castaneai/potdraw"
	statusKey = attribute.Key("status")
)

var (
	latencyHistogramBuckets = []float64{
		.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
	}
	attemptsHistogramBuckets = []float64{
		1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000,
	}
)

var (
	statusOK = statusKey.String("ok")
)

// errorStatusAttr reports a potdraw.Error by its status and anything else as "error".
func errorStatusAttr(err error) attribute.KeyValue {
	for _, status := range []potdraw.ErrorStatus{
		potdraw.ErrorStatusNotFound,
		potdraw.ErrorStatusAlreadyExists,
		potdraw.ErrorStatusInvalidRequest,
		potdraw.ErrorStatusAttemptsExhausted,
	} {
		if potdraw.ErrorHasStatus(err, status) {
			return statusKey.String(string(status))
		}
	}
	return statusKey.String("error")
}
