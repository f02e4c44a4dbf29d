package redis

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	cfgpkg "github.com/PugTools/divinatory-agenda/pkg/config"
)

func TestNewClient_DisabledWithoutAddr(t *testing.T) {
	c, err := NewClient(fxtest.NewLifecycle(t), zap.NewNop().Sugar(), &cfgpkg.Config{})
	require.NoError(t, err)
	require.Nil(t, c)
}
