package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cfgpkg "github.com/PugTools/divinatory-agenda/pkg/config"
)

func TestNewDB_EmptyDSN(t *testing.T) {
	_, err := NewDB(zap.NewNop().Sugar(), &cfgpkg.Config{})
	require.ErrorIs(t, err, gorm.ErrInvalidDB)
}
