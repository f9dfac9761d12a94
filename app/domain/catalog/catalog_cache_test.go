package catalog_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CatalogCache", func() {
	var (
		ctx    context.Context
		source *fakeSource
		cache  *catalog.CatalogCache
	)

	BeforeEach(func() {
		ctx = context.Background()
		source = newFakeSource()
		source.schemas = []string{"analytics", "public"}
		source.tables["public"] = []string{"users", "accounts", "profiles"}
		source.tables["analytics"] = []string{"events"}
		cache = catalog.NewCatalogCache(source)
	})

	Describe("FetchTables", func() {
		It("calls the source exactly once on a miss", func() {
			tables, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			Expect(tables).To(Equal([]string{"users", "accounts", "profiles"}))
			Expect(source.calls("public")).To(Equal(1))
		})

		It("serves a hit without calling the source again", func() {
			first, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			second, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(source.calls("public")).To(Equal(1))
			Expect(cache.Cached("public")).To(BeTrue())
		})

		It("does not remember failures", func() {
			source.setTablesErr("public", errors.New("permission denied for schema public"))
			_, err := cache.FetchTables(ctx, "public")
			Expect(err).To(MatchError(catalog.ErrFetchFailed))
			Expect(err.Error()).To(Equal("permission denied for schema public"))
			Expect(cache.Cached("public")).To(BeFalse())

			source.setTablesErr("public", nil)
			tables, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			Expect(tables).To(HaveLen(3))
			Expect(source.calls("public")).To(Equal(2))
		})

		It("keeps schemas independent", func() {
			_, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.Cached("analytics")).To(BeFalse())
			Expect(source.calls("analytics")).To(Equal(0))

			tables, err := cache.FetchTables(ctx, "analytics")
			Expect(err).NotTo(HaveOccurred())
			Expect(tables).To(Equal([]string{"events"}))
			Expect(cache.Len()).To(Equal(2))
		})

		It("preserves source order", func() {
			source.tables["public"] = []string{"zeta", "alpha", "mid"}
			tables, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			Expect(tables).To(Equal([]string{"zeta", "alpha", "mid"}))
		})

		It("caches an empty schema as empty", func() {
			tables, err := cache.FetchTables(ctx, "empty")
			Expect(err).NotTo(HaveOccurred())
			Expect(tables).NotTo(BeNil())
			Expect(tables).To(BeEmpty())
			_, _ = cache.FetchTables(ctx, "empty")
			Expect(source.calls("empty")).To(Equal(1))
		})

		It("rejects an empty schema name without a remote call", func() {
			_, err := cache.FetchTables(ctx, "")
			Expect(err).To(MatchError(catalog.ErrEmptySchema))
			Expect(source.calls("")).To(Equal(0))
		})

		It("hands out copies", func() {
			tables, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			tables[0] = "mutated"
			again, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			Expect(again[0]).To(Equal("users"))
		})

		It("coalesces concurrent misses into one remote call", func() {
			source.gate = make(chan struct{})
			const callers = 8
			var wg sync.WaitGroup
			results := make([][]string, callers)
			errs := make([]error, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					results[i], errs[i] = cache.FetchTables(ctx, "public")
				}(i)
			}
			Eventually(func() int { return source.calls("public") }).Should(Equal(1))
			close(source.gate)
			wg.Wait()

			Expect(source.calls("public")).To(Equal(1))
			for i := 0; i < callers; i++ {
				Expect(errs[i]).NotTo(HaveOccurred())
				Expect(results[i]).To(Equal([]string{"users", "accounts", "profiles"}))
			}
		})

		It("lets a cancelled caller go while the shared fetch completes", func() {
			source.gate = make(chan struct{})
			cctx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() {
				_, err := cache.FetchTables(cctx, "public")
				done <- err
			}()
			Eventually(func() int { return source.calls("public") }).Should(Equal(1))
			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))

			close(source.gate)
			Eventually(func() bool { return cache.Cached("public") }).Should(BeTrue())
			Expect(source.calls("public")).To(Equal(1))
		})

		It("gives up on a source that never answers and lets the next caller retry", func() {
			cache = catalog.NewCatalogCacheWithTimeout(source, 50*time.Millisecond)
			source.setHang(true)

			_, err := cache.FetchTables(ctx, "public")
			Expect(err).To(MatchError(catalog.ErrFetchFailed))
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(source.deadlineSeen()).To(BeTrue())
			Expect(cache.Cached("public")).To(BeFalse())

			source.setHang(false)
			tables, err := cache.FetchTables(ctx, "public")
			Expect(err).NotTo(HaveOccurred())
			Expect(tables).To(Equal([]string{"users", "accounts", "profiles"}))
			Expect(source.calls("public")).To(Equal(2))
		})
	})

	Describe("ListSchemas", func() {
		It("delegates every call", func() {
			schemas, err := cache.ListSchemas(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(schemas).To(Equal([]string{"analytics", "public"}))
			_, _ = cache.ListSchemas(ctx)
			Expect(source.schemaCalls).To(Equal(2))
		})

		It("wraps failures as fetch errors", func() {
			source.schemasErr = errors.New("")
			_, err := cache.ListSchemas(ctx)
			var fetchErr *catalog.FetchError
			Expect(errors.As(err, &fetchErr)).To(BeTrue())
			Expect(fetchErr.Op).To(Equal(catalog.OpSchemas))
			Expect(fetchErr.Message).To(Equal("Failed to fetch schemas"))
			Expect(err).To(MatchError(catalog.ErrFetchFailed))
		})
	})
})
