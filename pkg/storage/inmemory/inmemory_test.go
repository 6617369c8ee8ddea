package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/agentui/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	testutils.DescribeDriver(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("isolates stored records from later mutation", func() {
		d := inmemory.NewDriver()
		rec := testutils.NewTestRecord("original", time.Now())
		_, err := d.Put(context.Background(), rec)
		Expect(err).NotTo(HaveOccurred())

		rec.Message = "mutated"
		got, err := d.Get(context.Background(), rec.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Message).To(Equal("original"))
	})
})
