package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/Taichi-iskw/lingopad/internal/language"
	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/service/common"
)

const (
	DefaultLocalCommand = "nllb-translate"
	DefaultLocalModel   = "facebook/nllb-200-distilled-600M"
	DefaultLocalDevice  = "cpu"
)

var memoryExhaustionMarkers = []string{
	"bad allocation",
	"bad_alloc",
	"out of memory",
	"cannot allocate memory",
}

// LocalConfig selects the local NLLB command and model
type LocalConfig struct {
	Command string
	Model   string
	Device  string
}

// Local runs an on-device NLLB model through an external command
type Local struct {
	cmdRunner common.CmdRunner
	cfg       LocalConfig
	log       logrus.FieldLogger
	ready     atomic.Bool
}

// NewLocal creates the local model provider
func NewLocal(cmdRunner common.CmdRunner, cfg LocalConfig, log logrus.FieldLogger) *Local {
	if cfg.Command == "" {
		cfg.Command = DefaultLocalCommand
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLocalModel
	}
	if cfg.Device == "" {
		cfg.Device = DefaultLocalDevice
	}
	return &Local{
		cmdRunner: cmdRunner,
		cfg:       cfg,
		log:       log.WithField("provider", model.MethodLocal),
	}
}

func (l *Local) Method() model.Method { return model.MethodLocal }

func (l *Local) Kind() language.Kind { return language.KindModel }

// Translate runs the model once, loading it first if this process has not yet done so
func (l *Local) Translate(ctx context.Context, text, languageName, code string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("text cannot be empty")
	}

	if err := l.warmUp(ctx); err != nil {
		return "", err
	}

	args := []string{
		"--model", l.cfg.Model,
		"--device", l.cfg.Device,
		"--src", SourceModelCode,
		"--tgt", code,
		"--input", text,
	}

	output, err := l.cmdRunner.Run(ctx, l.cfg.Command, args...)
	if err != nil {
		return "", classifyFailure("translation", output, err)
	}
	if hasMemoryExhaustion(string(output)) {
		return "", fmt.Errorf("local model translation: %w", ErrResourceExhausted)
	}

	return strings.TrimSpace(string(output)), nil
}

// warmUp loads the model once. Concurrent first calls may both run the check.
func (l *Local) warmUp(ctx context.Context) error {
	if l.ready.Load() {
		return nil
	}

	output, err := l.cmdRunner.Run(ctx, l.cfg.Command, "--check", "--model", l.cfg.Model, "--device", l.cfg.Device)
	if err != nil {
		return classifyFailure("warm-up", output, err)
	}

	l.ready.Store(true)
	l.log.WithField("model", l.cfg.Model).Info("Local model ready")
	return nil
}

// Ready reports whether the model has been loaded in this process
func (l *Local) Ready() bool {
	return l.ready.Load()
}

func classifyFailure(stage string, output []byte, err error) error {
	if hasMemoryExhaustion(err.Error()) || hasMemoryExhaustion(string(output)) {
		return fmt.Errorf("local model %s: %w (%v)", stage, ErrResourceExhausted, err)
	}
	return fmt.Errorf("local model %s failed: %w", stage, err)
}

func hasMemoryExhaustion(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range memoryExhaustionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
