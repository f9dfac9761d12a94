package healthcheck_test

import (
	"context"
	"errors"

	"buildplate.dev/plate-api-gateway/app/domain/healthcheck"
	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubSource struct {
	err error
}

func (s stubSource) ListSchemas(ctx context.Context) ([]string, error) {
	return []string{"public"}, s.err
}

func (s stubSource) ListTables(ctx context.Context, schema string) ([]string, error) {
	return nil, s.err
}

type brokenCache struct {
	*cache.NoOpCacheService
}

func (brokenCache) HealthCheck(ctx context.Context) error {
	return errors.New("connection refused")
}

var _ = Describe("HealthcheckCrontabService", func() {
	It("has no status before the first check", func() {
		service := healthcheck.NewService(stubSource{}, &cache.NoOpCacheService{})
		Expect(service.LastStatus().CheckedAt.IsZero()).To(BeTrue())
	})

	It("is healthy when every component answers", func() {
		service := healthcheck.NewService(stubSource{}, &cache.NoOpCacheService{})
		status := service.Check(context.Background())
		Expect(status.Healthy).To(BeTrue())
		Expect(status.Failures).To(BeEmpty())
		Expect(service.LastStatus()).To(Equal(status))
	})

	It("names the failing components", func() {
		service := healthcheck.NewService(stubSource{err: errors.New("permission denied")}, brokenCache{&cache.NoOpCacheService{}})
		status := service.Check(context.Background())
		Expect(status.Healthy).To(BeFalse())
		Expect(status.Failures).To(HaveKeyWithValue(healthcheck.ComponentCatalog, "permission denied"))
		Expect(status.Failures).To(HaveKeyWithValue(healthcheck.ComponentCache, "connection refused"))
	})
})
