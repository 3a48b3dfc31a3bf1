package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var tagPrefixes = []string{
	"Rapid", "Clutch", "Toxic", "Silent", "Frozen",
	"Rogue", "Neon", "Savage", "Lucky", "Phantom",
	"Turbo", "Hyper", "Crimson", "Stealth", "Cosmic",
}

var tagRoots = []string{
	"Sniper", "Tank", "Healer", "Jungler", "Carry",
	"Rusher", "Camper", "Striker", "Ranger", "Medic",
	"Scout", "Support", "Fragger", "Ninja", "Titan",
}

func pick(n int) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// GenerateGamerTag returns a random display name like "ClutchSniper4821"
func GenerateGamerTag() (string, error) {
	prefix, err := pick(len(tagPrefixes))
	if err != nil {
		return "", fmt.Errorf("failed to pick tag prefix: %w", err)
	}
	root, err := pick(len(tagRoots))
	if err != nil {
		return "", fmt.Errorf("failed to pick tag root: %w", err)
	}
	suffix, err := pick(10000)
	if err != nil {
		return "", fmt.Errorf("failed to pick tag suffix: %w", err)
	}
	return fmt.Sprintf("%s%s%04d", tagPrefixes[prefix], tagRoots[root], suffix), nil
}
