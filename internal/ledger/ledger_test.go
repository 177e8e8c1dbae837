package ledger

import (
	"bytes"
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ndis-tools/invoice-ledger/internal/invoice"
)

var _ = Describe("summaryRow", func() {
	It("flattens the invoice header into one row", func() {
		row := summaryRow(buildInvoice("INV-2025-010"))
		Expect(row).To(Equal([]interface{}{
			"INV-2025-010",
			"2025-03-12",
			"2025-04-11",
			"200.00",
			"ABC Company",
			"John Doe",
			1,
		}))
	})
})

var _ = Describe("detailRows", func() {
	It("emits one row per line item", func() {
		rows := detailRows(buildInvoice("INV-2025-011"))
		Expect(rows).To(HaveLen(1))
		Expect(rows[0]).To(Equal([]interface{}{
			"INV-2025-011",
			"2025-03-12",
			"SVC001",
			"Professional Services",
			"2",
			"100.00",
			"200.00",
		}))
	})

	It("emits a placeholder row when the invoice has no line items", func() {
		inv, err := invoice.NewInvoice(invoice.InvoiceInput{
			InvoiceNumber:   "INV-2025-012",
			InvoiceDate:     "2025-03-12",
			TotalAmount:     "0.00",
			VendorName:      "ABC Company",
			ParticipantName: "John Doe",
		})
		Expect(err).NotTo(HaveOccurred())

		rows := detailRows(inv)
		Expect(rows).To(HaveLen(1))
		Expect(rows[0][3]).To(Equal("No line items"))
	})
})

var _ = Describe("JSONLedger", func() {
	It("writes one JSON document per invoice", func() {
		var buf bytes.Buffer
		led := NewJSONLedger(&buf)

		Expect(led.StoreInvoice(context.Background(), buildInvoice("INV-2025-013"))).To(Succeed())

		var decoded invoice.Invoice
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded.InvoiceNumber).To(Equal("INV-2025-013"))
		Expect(decoded.Vendor.Name).To(Equal("ABC Company"))
	})
})
