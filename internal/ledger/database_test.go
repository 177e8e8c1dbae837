package ledger

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ndis-tools/invoice-ledger/internal/invoice"
)

func buildInvoice(number string) *invoice.Invoice {
	item, err := invoice.NewLineItem(invoice.LineItemInput{
		ServiceDate:        "2025-03-12",
		ServiceCode:        "SVC001",
		Quantity:           "2",
		UnitPrice:          "100.00",
		LineTotal:          "200.00",
		ServiceDescription: "Professional Services",
	})
	Expect(err).NotTo(HaveOccurred())

	inv, err := invoice.NewInvoice(invoice.InvoiceInput{
		InvoiceNumber:   number,
		InvoiceDate:     "2025-03-12",
		DueDate:         "2025-04-11",
		TotalAmount:     "200.00",
		VendorName:      "ABC Company",
		ParticipantName: "John Doe",
		LineItems:       []invoice.LineItem{*item},
	})
	Expect(err).NotTo(HaveOccurred())
	return inv
}

var _ = Describe("BoltDB", func() {
	var (
		db  *BoltDB
		err error
	)

	BeforeEach(func() {
		db, err = NewBoltDB(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveInvoice", func() {
		It("round-trips an invoice through the archive", func() {
			Expect(db.SaveInvoice(buildInvoice("INV-2025-001"))).To(Succeed())

			saved, getErr := db.GetInvoice("INV-2025-001")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.InvoiceNumber).To(Equal("INV-2025-001"))
			Expect(saved.TotalAmount.StringFixed(2)).To(Equal("200.00"))
			Expect(saved.LineItems).To(HaveLen(1))
			Expect(saved.LineItems[0].ServiceCode).To(Equal("SVC001"))
		})
	})

	Describe("GetInvoice", func() {
		It("fails for an unknown invoice number", func() {
			_, getErr := db.GetInvoice("missing")
			Expect(getErr).To(HaveOccurred())
		})
	})

	Describe("HasInvoice", func() {
		It("reports archived invoice numbers", func() {
			Expect(db.SaveInvoice(buildInvoice("INV-2025-002"))).To(Succeed())

			found, hasErr := db.HasInvoice("INV-2025-002")
			Expect(hasErr).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())

			found, hasErr = db.HasInvoice("INV-2025-003")
			Expect(hasErr).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})
	})

	Describe("ListInvoices", func() {
		It("returns every archived invoice", func() {
			Expect(db.SaveInvoice(buildInvoice("INV-2025-004"))).To(Succeed())
			Expect(db.SaveInvoice(buildInvoice("INV-2025-005"))).To(Succeed())

			invoices, listErr := db.ListInvoices()
			Expect(listErr).NotTo(HaveOccurred())
			Expect(invoices).To(HaveLen(2))
		})

		It("returns an empty list for a fresh archive", func() {
			invoices, listErr := db.ListInvoices()
			Expect(listErr).NotTo(HaveOccurred())
			Expect(invoices).To(BeEmpty())
		})
	})
})
