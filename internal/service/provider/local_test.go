package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/lingopad/internal/service/common"
)

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func isCheck(args []string) bool {
	return len(args) > 0 && args[0] == "--check"
}

func TestLocal_Translate(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		runFunc       func(ctx context.Context, name string, args ...string) ([]byte, error)
		want          string
		wantErr       bool
		wantExhausted bool
	}{
		{
			name: "successful translation",
			text: "water",
			runFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				if isCheck(args) {
					return []byte("ok"), nil
				}
				return []byte("  पानी\n"), nil
			},
			want: "पानी",
		},
		{
			name:    "empty text returns error",
			text:    "   ",
			wantErr: true,
		},
		{
			name: "command failure",
			text: "water",
			runFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				if isCheck(args) {
					return []byte("ok"), nil
				}
				return nil, errors.New("exit status 1: model not found")
			},
			wantErr: true,
		},
		{
			name: "bad allocation during warm-up",
			text: "water",
			runFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				return nil, errors.New("exit status 134: terminate called after throwing an instance of 'std::bad_alloc'")
			},
			wantErr:       true,
			wantExhausted: true,
		},
		{
			name: "out of memory reported on stdout",
			text: "water",
			runFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				if isCheck(args) {
					return []byte("ok"), nil
				}
				return []byte("RuntimeError: CUDA out of memory"), nil
			},
			wantErr:       true,
			wantExhausted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &common.MockCmdRunner{RunFunc: tt.runFunc}
			local := NewLocal(runner, LocalConfig{}, quietLogger())

			got, err := local.Translate(context.Background(), tt.text, "hindi", "hin_Deva")

			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, got)
				assert.Equal(t, tt.wantExhausted, errors.Is(err, ErrResourceExhausted))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocal_WarmUpRunsOnce(t *testing.T) {
	var checks, translations atomic.Int32
	var lastArgs []string
	runner := &common.MockCmdRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			assert.Equal(t, DefaultLocalCommand, name)
			if isCheck(args) {
				checks.Add(1)
				return []byte("ok"), nil
			}
			translations.Add(1)
			lastArgs = args
			return []byte("output"), nil
		},
	}
	local := NewLocal(runner, LocalConfig{}, quietLogger())
	assert.False(t, local.Ready())

	for i := 0; i < 3; i++ {
		_, err := local.Translate(context.Background(), "hello", "tamil", "tam_Taml")
		require.NoError(t, err)
	}

	assert.True(t, local.Ready())
	assert.Equal(t, int32(1), checks.Load())
	assert.Equal(t, int32(3), translations.Load())
	assert.Equal(t, []string{
		"--model", DefaultLocalModel,
		"--device", DefaultLocalDevice,
		"--src", SourceModelCode,
		"--tgt", "tam_Taml",
		"--input", "hello",
	}, lastArgs)
}

func TestLocal_FailedWarmUpIsRetried(t *testing.T) {
	var checks atomic.Int32
	runner := &common.MockCmdRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			if isCheck(args) {
				if checks.Add(1) == 1 {
					return nil, errors.New("download interrupted")
				}
				return []byte("ok"), nil
			}
			return []byte("output"), nil
		},
	}
	local := NewLocal(runner, LocalConfig{Command: "nllb"}, quietLogger())

	_, err := local.Translate(context.Background(), "hello", "hindi", "hin_Deva")
	require.Error(t, err)
	assert.False(t, local.Ready())

	got, err := local.Translate(context.Background(), "hello", "hindi", "hin_Deva")
	require.NoError(t, err)
	assert.Equal(t, "output", got)
	assert.Equal(t, int32(2), checks.Load())
}
