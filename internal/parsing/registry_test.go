package parsing

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const minimalRegistryJSON = `{
  "invoice_types": {
    "test_vendor": {
      "name": "Test Vendor Pty Ltd",
      "patterns": {
        "invoice_number": "Invoice Number[:\\s]*([A-Z0-9\\-_]+)",
        "invoice_date": "Invoice Date[:\\s]*(\\d{1,2}/\\d{1,2}/\\d{4})",
        "due_date": "Due Date[:\\s]*(\\d{1,2}/\\d{1,2}/\\d{4})",
        "total_amount": "TOTAL[\\s]*\\$?([\\d.,]+)",
        "participant": "Provided To[:\\s]*([A-Za-z][A-Za-z ]*)",
        "line_items": {
          "table_start": "Description\\s+Quantity\\s+Unit Price\\s+Amount",
          "row": "([^\\n]+?)\\s+(\\d+(?:\\.\\d+)?)\\s+\\$?([\\d.,]+)\\s+\\$?([\\d.,]+)",
          "table_end": "TOTAL"
        }
      }
    },
    "generic": {
      "name": "Generic Invoice",
      "patterns": {
        "invoice_number": "Invoice[:\\s#]*([A-Z0-9\\-_]+)",
        "invoice_date": "Date[:\\s]*(\\d{1,2}/\\d{1,2}/\\d{4})",
        "due_date": "Due[:\\s]*(\\d{1,2}/\\d{1,2}/\\d{4})",
        "total_amount": "Total[:\\s]*\\$?([\\d.,]+)",
        "participant": "Bill To[:\\s]*([A-Za-z][A-Za-z ]*)",
        "line_items": {
          "table_start": "Description\\s+Qty\\s+Rate\\s+Amount",
          "row": "([^\\n]+?)\\s+(\\d+(?:\\.\\d+)?)\\s+\\$?([\\d.,]+)\\s+\\$?([\\d.,]+)",
          "table_end": "Total"
        }
      }
    }
  }
}`

var _ = Describe("ParseRegistry", func() {
	It("compiles a well-formed registry", func() {
		registry, err := ParseRegistry([]byte(minimalRegistryJSON))
		Expect(err).NotTo(HaveOccurred())

		profile, ok := registry.Lookup("test_vendor")
		Expect(ok).To(BeTrue())
		Expect(profile.Name).To(Equal("Test Vendor Pty Ltd"))
		Expect(profile.InvoiceNumber).NotTo(BeNil())
		Expect(profile.Table.Row.NumSubexp()).To(Equal(4))
	})

	It("rejects malformed JSON", func() {
		_, err := ParseRegistry([]byte("not json"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty registry", func() {
		_, err := ParseRegistry([]byte(`{"invoice_types": {}}`))
		Expect(err).To(HaveOccurred())
	})

	It("requires a generic fallback entry", func() {
		_, err := ParseRegistry([]byte(`{
  "invoice_types": {
    "test_vendor": {
      "name": "Test Vendor Pty Ltd",
      "patterns": {
        "invoice_number": "(INV[0-9]+)",
        "invoice_date": "(\\d{1,2}/\\d{1,2}/\\d{4})",
        "total_amount": "([\\d.,]+)",
        "line_items": {"table_start": "Items", "row": "(a)(1)(2)(3)", "table_end": "Total"}
      }
    }
  }
}`))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("generic"))
	})

	It("rejects an entry without a display name", func() {
		_, err := ParseRegistry([]byte(`{
  "invoice_types": {
    "generic": {
      "patterns": {
        "invoice_number": "(INV[0-9]+)",
        "invoice_date": "(\\d{1,2}/\\d{1,2}/\\d{4})",
        "total_amount": "([\\d.,]+)",
        "line_items": {"table_start": "Items", "row": "(a)(1)(2)(3)", "table_end": "Total"}
      }
    }
  }
}`))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("display name"))
	})

	It("rejects an invalid regular expression", func() {
		_, err := ParseRegistry([]byte(`{
  "invoice_types": {
    "generic": {
      "name": "Generic Invoice",
      "patterns": {
        "invoice_number": "([unclosed",
        "invoice_date": "(\\d{1,2}/\\d{1,2}/\\d{4})",
        "total_amount": "([\\d.,]+)",
        "line_items": {"table_start": "Items", "row": "(a)(1)(2)(3)", "table_end": "Total"}
      }
    }
  }
}`))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invoice_number"))
	})

	It("rejects a missing required pattern", func() {
		_, err := ParseRegistry([]byte(`{
  "invoice_types": {
    "generic": {
      "name": "Generic Invoice",
      "patterns": {
        "invoice_date": "(\\d{1,2}/\\d{1,2}/\\d{4})",
        "total_amount": "([\\d.,]+)",
        "line_items": {"table_start": "Items", "row": "(a)(1)(2)(3)", "table_end": "Total"}
      }
    }
  }
}`))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("missing invoice_number"))
	})
})

var _ = Describe("LoadRegistry", func() {
	It("loads a registry from a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "patterns.json")
		Expect(os.WriteFile(path, []byte(minimalRegistryJSON), 0644)).To(Succeed())

		registry, err := LoadRegistry(path)
		Expect(err).NotTo(HaveOccurred())
		_, ok := registry.Lookup(GenericKey)
		Expect(ok).To(BeTrue())
	})

	It("fails on a missing file", func() {
		_, err := LoadRegistry(filepath.Join(GinkgoT().TempDir(), "nope.json"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("DefaultRegistry", func() {
	It("compiles and carries the generic fallback", func() {
		registry, err := DefaultRegistry()
		Expect(err).NotTo(HaveOccurred())
		_, ok := registry.Lookup(GenericKey)
		Expect(ok).To(BeTrue())
	})
})
