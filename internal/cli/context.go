package cli

import (
	"math/big"
	"time"

	"github.com/mrz1836/palimpsest/internal/config"
	"github.com/mrz1836/palimpsest/internal/engine"
	"github.com/mrz1836/palimpsest/internal/kdf"
	"github.com/mrz1836/palimpsest/internal/output"
	"github.com/mrz1836/palimpsest/internal/update"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Engine    *engine.Engine
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) (*CommandContext, error) {
	eng, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
		Engine:    eng,
	}, nil
}

// buildEngine translates the loaded configuration into engine parameters.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	prime, ok := new(big.Int).SetString(cfg.Space.Prime, 10)
	if !ok {
		return nil, plmerr.WithDetails(plmerr.ErrConfigInvalid, map[string]string{
			"key": "space.prime",
		})
	}

	kdfParams, err := kdfParamsFor(cfg.Crypto)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(engine.Params{
		Prime:      prime,
		SpaceSize:  cfg.Space.Size,
		Threshold:  cfg.Crypto.Threshold,
		ChunkBytes: cfg.Crypto.ChunkBytes,
		Ratio:      cfg.Crypto.SubsetRatio,
		KDF:        kdfParams,
		Update: update.Config{
			LockTimeout: time.Duration(cfg.Update.LockTimeoutSeconds) * time.Second,
			StaleAfter:  time.Duration(cfg.Update.StaleAfterMinutes) * time.Minute,
		},
	})
	if err != nil {
		return nil, plmerr.Wrap(err, "invalid configuration")
	}
	return eng, nil
}

// kdfParamsFor maps the crypto config section onto KDF parameters.
func kdfParamsFor(c config.CryptoConfig) (kdf.Params, error) {
	switch config.SanitizeOption(c.KDF) {
	case "", kdf.AlgorithmPBKDF2:
		p := kdf.DefaultParams()
		if c.Iterations > 0 {
			p.Iterations = c.Iterations
		}
		return p, nil
	case kdf.AlgorithmArgon2id:
		return kdf.Argon2Params(), nil
	default:
		return kdf.Params{}, plmerr.WithDetails(plmerr.ErrConfigInvalid, map[string]string{
			"key":   "crypto.kdf",
			"value": c.KDF,
		})
	}
}
