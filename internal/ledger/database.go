package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ndis-tools/invoice-ledger/internal/invoice"
)

const invoiceBucket = "invoices"

// DB is the local archive of processed invoices, keyed by invoice number.
type DB interface {
	// SaveInvoice archives a processed invoice
	SaveInvoice(inv *invoice.Invoice) error

	// GetInvoice retrieves an archived invoice by invoice number
	GetInvoice(number string) (*invoice.Invoice, error)

	// HasInvoice reports whether an invoice number was already processed
	HasInvoice(number string) (bool, error)

	// ListInvoices returns all archived invoices
	ListInvoices() ([]*invoice.Invoice, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(invoiceBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveInvoice archives a processed invoice
func (b *BoltDB) SaveInvoice(inv *invoice.Invoice) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		data, err := json.Marshal(inv)
		if err != nil {
			return fmt.Errorf("marshaling invoice: %w", err)
		}
		return bucket.Put([]byte(inv.InvoiceNumber), data)
	})
}

// GetInvoice retrieves an archived invoice by invoice number
func (b *BoltDB) GetInvoice(number string) (*invoice.Invoice, error) {
	var inv *invoice.Invoice
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		data := bucket.Get([]byte(number))
		if data == nil {
			return fmt.Errorf("invoice not found: %s", number)
		}
		return json.Unmarshal(data, &inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// HasInvoice reports whether an invoice number was already processed
func (b *BoltDB) HasInvoice(number string) (bool, error) {
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		found = bucket.Get([]byte(number)) != nil
		return nil
	})
	return found, err
}

// ListInvoices returns all archived invoices
func (b *BoltDB) ListInvoices() ([]*invoice.Invoice, error) {
	invoices := make([]*invoice.Invoice, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var inv invoice.Invoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return fmt.Errorf("unmarshaling invoice: %w", err)
			}
			invoices = append(invoices, &inv)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
