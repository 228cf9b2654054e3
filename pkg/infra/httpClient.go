package infra

import (
	"time"

	"github.com/imroc/req/v3"
)

func ProvideHttpClient() *req.Client {
	return req.C().
		// Timeout of all requests.
		SetTimeout(5 * time.Second).
		// The caller display may be restarting, retry a few times.
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent("counter-queue-server")
}
