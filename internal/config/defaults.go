package config

// DefaultPrime is the default field modulus, the Mersenne prime 2^521 - 1.
// As a decimal string it survives YAML and JSON without precision loss.
const DefaultPrime = "6864797660130609714981900799081393217269435300143305409394463459185543183397656052122559640661454554977296311391480858037121987999716643812574028291115057151"

// DefaultSpaceSize is the default number of share IDs per chunk.
const DefaultSpaceSize = 1024

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.palimpsest",
		Space: SpaceConfig{
			Prime:  DefaultPrime,
			Size:   DefaultSpaceSize,
			RatioA: 0.35,
			RatioB: 0.35,
		},
		Crypto: CryptoConfig{
			Threshold:   3,
			ChunkBytes:  32,
			SubsetRatio: 0.3,
			KDF:         "pbkdf2",
			Iterations:  100000,
		},
		Update: UpdateConfig{
			LockTimeoutSeconds: 10,
			StaleAfterMinutes:  5,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.palimpsest/palimpsest.log",
		},
	}
}
