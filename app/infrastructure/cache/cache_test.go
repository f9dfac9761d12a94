package cache

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseValkeyURL", func() {
	It("accepts a bare address", func() {
		addr, password, db, err := parseValkeyURL("cache:6379")
		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal("cache:6379"))
		Expect(password).To(BeEmpty())
		Expect(db).To(Equal(-1))
	})

	It("extracts password and database", func() {
		addr, password, db, err := parseValkeyURL("valkey://:hunter2@cache:6380/3")
		Expect(err).NotTo(HaveOccurred())
		Expect(addr).To(Equal("cache:6380"))
		Expect(password).To(Equal("hunter2"))
		Expect(db).To(Equal(3))
	})

	It("requires a host", func() {
		_, _, _, err := parseValkeyURL("valkey:///2")
		Expect(err).To(MatchError(ContainSubstring("no host")))
	})
})

var _ = Describe("NoOpCacheService", func() {
	var (
		ctx  context.Context
		noop *NoOpCacheService
	)

	BeforeEach(func() {
		ctx = context.Background()
		noop = &NoOpCacheService{}
	})

	It("always misses", func() {
		var out string
		Expect(noop.Set(ctx, "k", "v", time.Minute)).To(Succeed())
		Expect(noop.Get(ctx, "k", &out)).To(MatchError(ErrKeyNotFound))
		exists, err := noop.Exists(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("runs the fallback and copies its value", func() {
		type payload struct {
			Name string `json:"name"`
		}
		var out payload
		calls := 0
		err := noop.GetWithFallback(ctx, "k", &out, func() (any, error) {
			calls++
			return payload{Name: "public"}, nil
		}, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Name).To(Equal("public"))
		Expect(calls).To(Equal(1))
	})

	It("surfaces fallback failures", func() {
		var out string
		boom := errors.New("boom")
		err := noop.GetWithFallback(ctx, "k", &out, func() (any, error) { return nil, boom }, time.Minute)
		Expect(err).To(MatchError(boom))
	})

	It("hands out locks freely", func() {
		unlock, err := noop.Lock(ctx, "lock", time.Second)
		Expect(err).NotTo(HaveOccurred())
		unlock()
		Expect(noop.HealthCheck(ctx)).To(Succeed())
	})
})

var _ = Describe("MemoryCacheService", func() {
	var (
		ctx   context.Context
		mem   *MemoryCacheService
		clock time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		mem = NewMemoryCacheService()
		mem.now = func() time.Time { return clock }
	})

	It("round trips JSON values", func() {
		Expect(mem.Set(ctx, "k", []string{"users", "accounts"}, 0)).To(Succeed())
		var out []string
		Expect(mem.Get(ctx, "k", &out)).To(Succeed())
		Expect(out).To(Equal([]string{"users", "accounts"}))
	})

	It("expires entries", func() {
		Expect(mem.Set(ctx, "k", "v", time.Minute)).To(Succeed())
		exists, _ := mem.Exists(ctx, "k")
		Expect(exists).To(BeTrue())

		clock = clock.Add(time.Minute)
		exists, _ = mem.Exists(ctx, "k")
		Expect(exists).To(BeFalse())
		var out string
		Expect(mem.Get(ctx, "k", &out)).To(MatchError(ErrKeyNotFound))
	})

	It("only calls the fallback on a miss", func() {
		calls := 0
		fallback := func() (any, error) {
			calls++
			return "value", nil
		}
		var out string
		Expect(mem.GetWithFallback(ctx, "k", &out, fallback, time.Minute)).To(Succeed())
		Expect(mem.GetWithFallback(ctx, "k", &out, fallback, time.Minute)).To(Succeed())
		Expect(out).To(Equal("value"))
		Expect(calls).To(Equal(1))

		Expect(mem.Delete(ctx, "k")).To(Succeed())
		Expect(mem.GetWithFallback(ctx, "k", &out, fallback, time.Minute)).To(Succeed())
		Expect(calls).To(Equal(2))
	})

	It("refuses a held lock until it is released", func() {
		unlock, err := mem.Lock(ctx, "lock", time.Second)
		Expect(err).NotTo(HaveOccurred())

		_, err = mem.Lock(ctx, "lock", time.Second)
		Expect(err).To(MatchError(ErrLockTaken))

		unlock()
		unlock()
		again, err := mem.Lock(ctx, "lock", time.Second)
		Expect(err).NotTo(HaveOccurred())
		again()
	})

	It("frees a lock after its ttl", func() {
		_, err := mem.Lock(ctx, "lock", time.Second)
		Expect(err).NotTo(HaveOccurred())
		clock = clock.Add(2 * time.Second)
		_, err = mem.Lock(ctx, "lock", time.Second)
		Expect(err).NotTo(HaveOccurred())
	})

	It("does not release a lock that expired and was taken by someone else", func() {
		staleUnlock, err := mem.Lock(ctx, "lock", time.Second)
		Expect(err).NotTo(HaveOccurred())
		clock = clock.Add(2 * time.Second)
		_, err = mem.Lock(ctx, "lock", time.Second)
		Expect(err).NotTo(HaveOccurred())

		staleUnlock()

		_, err = mem.Lock(ctx, "lock", time.Second)
		Expect(err).To(MatchError(ErrLockTaken))
	})
})
