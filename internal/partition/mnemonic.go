package partition

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

var (
	// ErrInvalidWordCount indicates the mnemonic must be 12 or 24 words.
	ErrInvalidWordCount = errors.New("word count must be 12 or 24")

	// ErrInvalidMnemonic indicates the mnemonic is not a valid BIP39 phrase.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

	// whitespaceRegex matches one or more whitespace characters.
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// GenerateMnemonic creates a human-memorable master credential as a BIP39
// phrase. wordCount must be 12 (128 bits entropy) or 24 (256 bits entropy).
func GenerateMnemonic(wordCount int) (string, error) {
	var bitSize int
	switch wordCount {
	case 12:
		bitSize = 128
	case 24:
		bitSize = 256
	default:
		return "", ErrInvalidWordCount
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// NormalizeMnemonicInput lowercases a phrase and collapses whitespace so
// copy-pasted input validates cleanly.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// DeriveChildCredential derives the credential for one party from a master
// mnemonic. Children are hardened BIP32 descendants of the mnemonic seed, so
// party 0 and party 1 credentials are unlinkable without the master phrase.
// The result is a canonical seed-string credential.
func DeriveChildCredential(mnemonic string, index uint32) (string, error) {
	normalized := NormalizeMnemonicInput(mnemonic)
	if !bip39.IsMnemonicValid(normalized) {
		return "", ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(normalized, "")
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return "", err
	}

	child, err := master.NewChildKey(bip32.FirstHardenedChild + index)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(child.Key)
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

// SuggestWord returns the closest BIP39 word to a misspelled input, or an
// empty string when nothing is close enough to suggest.
func SuggestWord(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	wordList := bip39.GetWordList()
	best := ""
	bestDist := 3 // suggest only near-misses
	for _, word := range wordList {
		dist := levenshtein.ComputeDistance(input, word)
		if dist < bestDist {
			best = word
			bestDist = dist
			if dist == 0 {
				break
			}
		}
	}
	return best
}
