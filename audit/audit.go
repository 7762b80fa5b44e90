// Package audit keeps the transcripts of completed proof sessions in a bbolt database. Each
// transcript is sealed with an ECDSA signature when stored and checked when read back, so that
// later tampering with the database is detected.
package audit

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/privacybydesign/schnorr"
	"github.com/privacybydesign/schnorr/internal/common"
	"github.com/privacybydesign/schnorr/signed"
)

const ErrNotFound common.ErrorKind = "transcript not found"

// BoltFilePerm is the permission with which the database file is created.
const BoltFilePerm = 0600

var transcriptBucket = []byte("transcripts")

var _ schnorr.AuditSink = (*BoltLog)(nil)

// BoltLog is an append-only store of signed transcripts, keyed by session id.
type BoltLog struct {
	db *bolt.DB
	sk *ecdsa.PrivateKey
	pk *ecdsa.PublicKey
}

// Open opens or creates the log at path, sealing new transcripts with sk.
func Open(path string, sk *ecdsa.PrivateKey, opts *bolt.Options) (*BoltLog, error) {
	l, err := open(path, &sk.PublicKey, opts)
	if err != nil {
		return nil, err
	}
	l.sk = sk
	return l, nil
}

// OpenReader opens the existing log at path for reading only, checking seals against pk.
func OpenReader(path string, pk *ecdsa.PublicKey) (*BoltLog, error) {
	return open(path, pk, &bolt.Options{ReadOnly: true})
}

func open(path string, pk *ecdsa.PublicKey, opts *bolt.Options) (*BoltLog, error) {
	db, err := bolt.Open(path, BoltFilePerm, opts)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to open audit log", 0)
	}
	if !db.IsReadOnly() {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(transcriptBucket)
			return err
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &BoltLog{db: db, pk: pk}, nil
}

// Record signs and stores t. Each session can be recorded once.
func (l *BoltLog) Record(t *schnorr.Transcript) error {
	if l.sk == nil {
		return errors.New("audit log opened for reading only")
	}
	if t.Session == uuid.Nil {
		return errors.New("transcript has no session id")
	}
	msg, err := signed.MarshalSign(l.sk, t)
	if err != nil {
		return errors.WrapPrefix(err, "failed to seal transcript", 0)
	}
	err = l.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(transcriptBucket)
		if bucket.Get(t.Session[:]) != nil {
			return errors.Errorf("transcript of session %s already recorded", t.Session)
		}
		return bucket.Put(t.Session[:], msg)
	})
	if err != nil {
		return err
	}
	schnorr.Logger.WithField("session", t.Session).Debug("Transcript recorded")
	return nil
}

// Load returns the transcript of session id after checking its seal.
func (l *BoltLog) Load(id uuid.UUID) (*schnorr.Transcript, error) {
	var msg signed.Message
	err := l.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(transcriptBucket)
		if bucket == nil {
			return errors.WrapPrefix(ErrNotFound, id.String(), 0)
		}
		v := bucket.Get(id[:])
		if v == nil {
			return errors.WrapPrefix(ErrNotFound, id.String(), 0)
		}
		msg = append(signed.Message(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.unseal(msg)
}

// ForEach calls f with every stored transcript in session id order, stopping at the first
// error. A transcript with a broken seal is reported as an error.
func (l *BoltLog) ForEach(f func(*schnorr.Transcript) error) error {
	return l.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(transcriptBucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			t, err := l.unseal(v)
			if err != nil {
				return errors.WrapPrefix(err, fmt.Sprintf("transcript %x", k), 0)
			}
			return f(t)
		})
	})
}

func (l *BoltLog) unseal(msg signed.Message) (*schnorr.Transcript, error) {
	var t schnorr.Transcript
	if err := signed.UnmarshalVerify(l.pk, msg, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (l *BoltLog) Close() error {
	err := l.db.Close()
	if err != nil {
		schnorr.Logger.WithError(err).Error("Failed to close audit log")
	}
	return err
}
