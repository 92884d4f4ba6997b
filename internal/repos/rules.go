package repos

import (
	"fmt"

	"github.com/dmitrijs2005/reposhelf/internal/common"
	"github.com/dmitrijs2005/reposhelf/internal/fingerprint"
	"github.com/dmitrijs2005/reposhelf/internal/models"
)

// ConsistencyWarning reports a supplied fingerprint that does not match the
// public key. The write still goes ahead with the supplied value.
type ConsistencyWarning struct {
	Supplied   string
	Calculated string
}

func (w *ConsistencyWarning) Error() string {
	return fmt.Sprintf("%s: supplied %s, calculated %s",
		common.ErrFingerprintMismatch, w.Supplied, w.Calculated)
}

func (w *ConsistencyWarning) Unwrap() error { return common.ErrFingerprintMismatch }

// ApplyFingerprint keeps fingerprint in step with pubkey. It only acts when
// pubkey is part of the field-set:
//
//   - no fingerprint supplied, non-empty key: the calculated one is added
//   - empty fingerprint supplied, non-empty key: replaced by the calculated one
//   - different fingerprint supplied, non-empty key: kept, warning returned
//   - empty key: fingerprint left as supplied
func ApplyFingerprint(v models.Values) (models.Values, *ConsistencyWarning) {
	if !v.Has(models.ColPublicKey) {
		return v, nil
	}

	pubkey, _ := v.String(models.ColPublicKey)
	if pubkey == "" {
		return v, nil
	}
	calc := fingerprint.Compute(pubkey)

	if !v.Has(models.ColFingerprint) {
		return v.With(models.ColFingerprint, calc), nil
	}

	supplied, _ := v.String(models.ColFingerprint)
	switch {
	case supplied == "":
		return v.With(models.ColFingerprint, calc), nil
	case !fingerprint.Equal(supplied, calc):
		return v, &ConsistencyWarning{Supplied: supplied, Calculated: calc}
	default:
		return v, nil
	}
}

// ApplyInsertDefaults fills in what a new repo must have. The address is
// required and must not be empty.
func ApplyInsertDefaults(v models.Values) (models.Values, error) {
	address, ok := v.String(models.ColAddress)
	if !ok || address == "" {
		return models.Values{}, fmt.Errorf("%w: %s", common.ErrMissingRequiredField, models.ColAddress)
	}

	if !v.Has(models.ColName) {
		v = v.With(models.ColName, models.NameFromAddress(address))
	}
	if !v.Has(models.ColInUse) {
		v = v.With(models.ColInUse, true)
	}
	if !v.Has(models.ColPriority) {
		v = v.With(models.ColPriority, int64(common.DefaultPriority))
	}
	if !v.Has(models.ColMaxAge) {
		v = v.With(models.ColMaxAge, int64(common.DefaultMaxAge))
	}
	if !v.Has(models.ColVersion) {
		v = v.With(models.ColVersion, int64(common.DefaultVersion))
	}
	return v, nil
}

// ApplyUpdateRules derives the fields an update implies: a new address
// without a name renames the repo, and disabling a repo drops its ETag.
func ApplyUpdateRules(v models.Values) (models.Values, error) {
	if v.Has(models.ColAddress) {
		address, _ := v.String(models.ColAddress)
		if address == "" {
			return models.Values{}, fmt.Errorf("%w: %s must not be empty", common.ErrMissingRequiredField, models.ColAddress)
		}
		if !v.Has(models.ColName) {
			v = v.With(models.ColName, models.NameFromAddress(address))
		}
	}

	if inUse, ok := v.Bool(models.ColInUse); ok && !inUse {
		v = v.With(models.ColLastETag, nil)
	}
	return v, nil
}

// PrepareInsert runs the full insert pipeline.
func PrepareInsert(v models.Values) (models.Values, *ConsistencyWarning, error) {
	v, err := normalizeWrite(v)
	if err != nil {
		return models.Values{}, nil, err
	}
	if v, err = ApplyInsertDefaults(v); err != nil {
		return models.Values{}, nil, err
	}
	v, warn := ApplyFingerprint(v)
	return v, warn, nil
}

// PrepareUpdate runs the full update pipeline.
func PrepareUpdate(v models.Values) (models.Values, *ConsistencyWarning, error) {
	v, err := normalizeWrite(v)
	if err != nil {
		return models.Values{}, nil, err
	}
	if v, err = ApplyUpdateRules(v); err != nil {
		return models.Values{}, nil, err
	}
	v, warn := ApplyFingerprint(v)
	return v, warn, nil
}

func normalizeWrite(v models.Values) (models.Values, error) {
	v, err := models.Normalize(v)
	if err != nil {
		return models.Values{}, err
	}
	if v.Has(models.ColID) {
		return models.Values{}, fmt.Errorf("%w: %s", common.ErrImmutableField, models.ColID)
	}
	return v, nil
}
