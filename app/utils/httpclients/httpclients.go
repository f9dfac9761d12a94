package httpclients

import (
	"time"

	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"resty.dev/v3"
)

// NewClient builds a resty client that logs failed requests under name.
func NewClient(name string) *resty.Client {
	client := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "plate-api-gateway/"+name)
	client.AddResponseMiddleware(func(c *resty.Client, resp *resty.Response) error {
		if resp.IsError() {
			logger.GetLogger().
				WithField("client", name).
				WithField("status", resp.StatusCode()).
				Warnf("request to %s failed", resp.Request.URL)
		}
		return nil
	})
	return client
}
