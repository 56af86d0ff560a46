package errors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/5sensprod/possync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "product",
			ID:       "p-42",
		}
		assert.Equal(t, "product with ID p-42 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("category", "c1")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "scope",
			Message: "must be one of identity, sku, all, none",
		}
		assert.Equal(t, "validation failed for field scope: must be one of identity, sku, all, none", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "local path required"}
		assert.Equal(t, "validation failed: local path required", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestEmptyCollectionError(t *testing.T) {
	err := pkgerrors.NewEmptyCollectionError("source", "/data/source.db")
	assert.Contains(t, err.Error(), "source")
	assert.Contains(t, err.Error(), "/data/source.db")
	assert.True(t, pkgerrors.IsEmptyCollection(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestBackupError(t *testing.T) {
	t.Run("with backup path", func(t *testing.T) {
		base := errors.New("disk full")
		err := pkgerrors.NewBackupError("restore", "products.db", "backups/products.db.bak", base)
		assert.Contains(t, err.Error(), "restore")
		assert.Contains(t, err.Error(), "backups/products.db.bak")
		assert.Equal(t, base, err.Unwrap())
		assert.True(t, pkgerrors.IsBackupFailure(err))
	})

	t.Run("without backup path", func(t *testing.T) {
		err := pkgerrors.NewBackupError("backup", "products.db", "", errors.New("permission denied"))
		assert.Equal(t, "backup of products.db failed: permission denied", err.Error())
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("circular", func(t *testing.T) {
		err := pkgerrors.NewReferenceError(pkgerrors.RefCircular, "category", "A", "parent_id", "")
		err.Chain = []string{"A", "B", "C", "A"}
		assert.Equal(t, "circular reference for category A: A -> B -> C -> A", err.Error())
		assert.True(t, pkgerrors.IsCircularReference(err))
		assert.False(t, pkgerrors.IsNotFound(err))
	})

	t.Run("missing parent", func(t *testing.T) {
		err := pkgerrors.NewReferenceError(pkgerrors.RefMissing, "category", "B", "parent_id", "Z")
		assert.Contains(t, err.Error(), "missing parent Z")
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("dangling", func(t *testing.T) {
		err := pkgerrors.NewReferenceError(pkgerrors.RefDangling, "product", "p1", "brand_id", "b9")
		assert.Equal(t, "product p1 references unknown brand_id b9", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestRemoteError(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		err := pkgerrors.NewRemoteError("woocommerce", 429, "too many requests")
		assert.Contains(t, err.Error(), "429")
		assert.True(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("server error", func(t *testing.T) {
		err := pkgerrors.NewRemoteError("woocommerce", 503, "maintenance")
		assert.True(t, errors.Is(err, pkgerrors.ErrRemoteUnavailable))
		assert.False(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("client error", func(t *testing.T) {
		err := pkgerrors.NewRemoteError("woocommerce", 400, "bad sku")
		assert.False(t, errors.Is(err, pkgerrors.ErrRemoteUnavailable))
	})
}

func TestParseError(t *testing.T) {
	t.Run("with file and line", func(t *testing.T) {
		err := pkgerrors.NewParseError("ndjson", "products.db", 4, errors.New("unexpected end of JSON input"))
		assert.Equal(t, "parse error in ndjson at products.db:4: unexpected end of JSON input", err.Error())
	})

	t.Run("with file only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "json", File: "report.json", Message: "invalid character"}
		assert.Equal(t, "parse error in json file report.json: invalid character", err.Error())
	})

	t.Run("format only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "yaml", Message: "syntax error"}
		assert.Equal(t, "yaml parse error: syntax error", err.Error())
	})
}

func TestWrapHelpers(t *testing.T) {
	t.Run("WrapIO", func(t *testing.T) {
		err := pkgerrors.WrapIO("write", "/tmp/products.db", errors.New("disk full"))
		var ioErr *pkgerrors.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "write", ioErr.Operation)
		assert.Equal(t, "/tmp/products.db", ioErr.Path)
		assert.Nil(t, pkgerrors.WrapIO("read", "file", nil))
	})

	t.Run("WrapResource", func(t *testing.T) {
		err := pkgerrors.WrapResource("save", "products", "", errors.New("boom"))
		assert.Equal(t, "failed to save products: boom", err.Error())
		assert.Nil(t, pkgerrors.WrapResource("save", "products", "", nil))
	})

	t.Run("WrapParse", func(t *testing.T) {
		err := pkgerrors.WrapParse("json", "report.json", 0, errors.New("invalid syntax"))
		assert.Contains(t, err.Error(), "report.json")
		assert.Nil(t, pkgerrors.WrapParse("json", "x", 0, nil))
	})

	t.Run("WrapRemote", func(t *testing.T) {
		err := pkgerrors.WrapRemote("woocommerce", 429, errors.New("slow down"))
		assert.True(t, pkgerrors.IsRateLimited(err))
		assert.Nil(t, pkgerrors.WrapRemote("woocommerce", 200, nil))
	})

	t.Run("WrapValidation", func(t *testing.T) {
		err := pkgerrors.WrapValidation("strategy", errors.New("unknown"))
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Nil(t, pkgerrors.WrapValidation("strategy", nil))
	})
}

func TestErrorChaining(t *testing.T) {
	base := errors.New("rename failed")
	ioErr := pkgerrors.WrapIO("rename", "products.db", base)
	resErr := pkgerrors.WrapResource("save", "products", "", ioErr)

	var target *pkgerrors.IOError
	require.True(t, errors.As(resErr, &target))
	assert.Equal(t, "rename", target.Operation)
	assert.True(t, errors.Is(resErr, base))
}
