package sigstore

import (
	"context"

	"vidsync/internal/logging"
	"vidsync/internal/signature"
)

// Signer produces frame signatures.
type Signer interface {
	Signature(ctx context.Context, path string, timestampMS int64) signature.Signature
}

type readThrough struct {
	store *Store
	next  Signer
}

// Wrap returns a Signer that consults the store before next and saves what
// next produces. Absent signatures are not persisted since decode failures
// may be transient.
func (s *Store) Wrap(next Signer) Signer {
	return &readThrough{store: s, next: next}
}

func (r *readThrough) Signature(ctx context.Context, path string, timestampMS int64) signature.Signature {
	sig, ok, err := r.store.Lookup(ctx, path, timestampMS)
	if err != nil {
		r.store.logger.Debug("signature lookup failed",
			logging.String(logging.FieldPath, path),
			logging.Int64(logging.FieldTimestamp, timestampMS),
			logging.Error(err))
	}
	if ok {
		return sig
	}

	sig = r.next.Signature(ctx, path, timestampMS)
	if !sig.Present || err != nil {
		return sig
	}
	if saveErr := r.store.Save(ctx, path, timestampMS, sig); saveErr != nil {
		logging.WarnWithContext(r.store.logger, "failed to persist signature", "sigstore_save_failed",
			logging.String(logging.FieldPath, path),
			logging.Int64(logging.FieldTimestamp, timestampMS),
			logging.Error(saveErr),
			logging.String(logging.FieldErrorHint, "check permissions on the store directory"),
			logging.String(logging.FieldImpact, "frame will be decoded again next run"))
	}
	return sig
}
