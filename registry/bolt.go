package registry

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/jonboulle/clockwork"
	bolt "go.etcd.io/bbolt"

	"github.com/privacybydesign/schnorr"
	"github.com/privacybydesign/schnorr/big"
	"github.com/privacybydesign/schnorr/cbor"
	"github.com/privacybydesign/schnorr/group"
)

// BoltFilePerm is the permission with which the database file is created.
const BoltFilePerm = 0600

var keyBucket = []byte("publickeys")

// Bolt is a registry persisted in a bbolt database file. Records are stored CBOR-encoded under
// the identity.
type Bolt struct {
	db     *bolt.DB
	params *group.Params
	clock  clockwork.Clock
}

// OpenBolt opens or creates the database at path. A nil clock means the real clock.
func OpenBolt(path string, params *group.Params, clock clockwork.Clock, opts *bolt.Options) (*Bolt, error) {
	db, err := bolt.Open(path, BoltFilePerm, opts)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to open registry", 0)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(keyBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Bolt{db: db, params: params, clock: clock}, nil
}

// Register stores y as the public key of identity, replacing any earlier key.
func (b *Bolt) Register(ctx context.Context, identity string, y *big.Int) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	record, err := newRecord(b.params, identity, y, b.clock.Now())
	if err != nil {
		return err
	}
	bts, err := cbor.Marshal(record)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(keyBucket)
		if bucket.Get([]byte(identity)) != nil {
			schnorr.Logger.WithField("identity", identity).Info("Replacing registered public key")
		}
		return bucket.Put([]byte(identity), bts)
	})
}

// Delete removes identity.
func (b *Bolt) Delete(ctx context.Context, identity string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(keyBucket)
		if bucket.Get([]byte(identity)) == nil {
			return unknown(identity)
		}
		return bucket.Delete([]byte(identity))
	})
}

// Lookup returns the public key of identity.
func (b *Bolt) Lookup(ctx context.Context, identity string) (*big.Int, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	var record Record
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(keyBucket).Get([]byte(identity))
		if v == nil {
			return unknown(identity)
		}
		// v is only valid during the transaction; Unmarshal copies what it keeps.
		return cbor.Unmarshal(v, &record)
	})
	if err != nil {
		return nil, err
	}
	return record.publicKey(b.params, identity)
}

func (b *Bolt) Close() error {
	err := b.db.Close()
	if err != nil {
		schnorr.Logger.WithError(err).Error("Failed to close registry")
	}
	return err
}
