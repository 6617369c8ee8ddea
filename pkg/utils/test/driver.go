package testutils

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

// DescribeDriver registers the behaviour every storage.Driver shares.
// newDriver is called before each test and the driver is closed after it.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
			driver = nil
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a record", func() {
			rec := NewTestRecord("show a card", base)
			rec.Error = "quota exceeded"
			rec.Cancelled = true

			inserted, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			got, err := driver.Get(ctx, rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(rec.ID))
			Expect(got.Message).To(Equal("show a card"))
			Expect(got.Backend).To(Equal(rec.Backend))
			Expect(got.Tiers).To(Equal(rec.Tiers))
			Expect(got.Error).To(Equal("quota exceeded"))
			Expect(got.Cancelled).To(BeTrue())
			Expect(got.StartedAt.Equal(rec.StartedAt)).To(BeTrue())
			Expect(got.CompletedAt.Equal(rec.CompletedAt)).To(BeTrue())

			Expect(got.Events).To(HaveLen(2))
			for i := range got.Events {
				Expect(got.Events[i].String()).To(Equal(rec.Events[i].String()))
			}
		})

		It("does not overwrite an existing record", func() {
			rec := NewTestRecord("first", base)
			_, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())

			dup := *rec
			dup.Message = "second"
			inserted, err := driver.Put(ctx, &dup)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			got, err := driver.Get(ctx, rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Message).To(Equal("first"))
		})

		It("rejects nil records", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(MatchError(transcript.ErrNilRecord))
		})

		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "missing"}))
		})
	})

	Describe("Has", func() {
		It("reports stored records", func() {
			rec := NewTestRecord("x", base)
			ok, err := driver.Has(ctx, rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			_, err = driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())

			ok, err = driver.Has(ctx, rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("returns the newest records first, up to the limit", func() {
			for i := range 5 {
				_, err := driver.Put(ctx, NewTestRecord("m", base.Add(time.Duration(i)*time.Minute)))
				Expect(err).NotTo(HaveOccurred())
			}

			recs, err := driver.List(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(3))
			Expect(recs[0].StartedAt.Equal(base.Add(4 * time.Minute))).To(BeTrue())
			Expect(recs[2].StartedAt.Equal(base.Add(2 * time.Minute))).To(BeTrue())
		})

		It("applies the default limit", func() {
			_, err := driver.Put(ctx, NewTestRecord("m", base))
			Expect(err).NotTo(HaveOccurred())

			recs, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
		})

		It("returns nothing for an empty store", func() {
			recs, err := driver.List(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(BeEmpty())
		})
	})
}
