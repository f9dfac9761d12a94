package objectstore

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("snapshot keys", func() {
	It("round trips the timestamp", func() {
		key := SnapshotKey("staging", 1700000000)
		Expect(key).To(Equal("catalog/staging/1700000000.json"))
		timestamp, ok := parseSnapshotKey("staging", key)
		Expect(ok).To(BeTrue())
		Expect(timestamp).To(Equal(int64(1700000000)))
	})

	It("ignores foreign keys", func() {
		_, ok := parseSnapshotKey("staging", "catalog/prod/1700000000.json")
		Expect(ok).To(BeFalse())
		_, ok = parseSnapshotKey("staging", "catalog/staging/latest.json")
		Expect(ok).To(BeFalse())
		_, ok = parseSnapshotKey("staging", "catalog/staging/1700000000.txt")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("expiredSnapshots", func() {
	now := time.Unix(1700000000, 0)

	It("selects snapshots older than the retention", func() {
		keys := []string{
			SnapshotKey("p", now.Add(-48*time.Hour).Unix()),
			SnapshotKey("p", now.Add(-time.Hour).Unix()),
			SnapshotKey("p", now.Add(-72*time.Hour).Unix()),
			"catalog/p/notes.txt",
		}
		Expect(expiredSnapshots("p", keys, 24*time.Hour, now)).To(ConsistOf(
			SnapshotKey("p", now.Add(-48*time.Hour).Unix()),
			SnapshotKey("p", now.Add(-72*time.Hour).Unix()),
		))
	})

	It("keeps the newest snapshot however old it is", func() {
		keys := []string{
			SnapshotKey("p", now.Add(-72*time.Hour).Unix()),
			SnapshotKey("p", now.Add(-96*time.Hour).Unix()),
		}
		Expect(expiredSnapshots("p", keys, 24*time.Hour, now)).To(Equal([]string{
			SnapshotKey("p", now.Add(-96*time.Hour).Unix()),
		}))
	})

	It("returns nothing when there is nothing to expire", func() {
		Expect(expiredSnapshots("p", nil, time.Hour, now)).To(BeEmpty())
	})
})
