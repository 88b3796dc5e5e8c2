package random

import (
	"crypto/hmac"
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
)

// NewServerSeed draws a fresh 256-bit server seed from the OS entropy pool.
func NewServerSeed() string {
	var buf [32]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		panic("random: server seed: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}

// FairSource derives every draw from HMAC-SHA256(serverSeed, clientSeed:nonce)
// so a player holding the client seed can replay the round once the server
// seed is disclosed. The nonce increments per draw, making each draw in a
// round independently verifiable.
type FairSource struct {
	mu         sync.Mutex
	serverSeed string
	clientSeed string
	nonce      uint64
}

func NewFair(serverSeed, clientSeed string) *FairSource {
	return &FairSource{serverSeed: serverSeed, clientSeed: clientSeed}
}

// SeedHash returns the SHA256 commitment of the server seed, published
// before play so the seed cannot be swapped afterwards.
func (f *FairSource) SeedHash() string {
	sum := sha256.Sum256([]byte(f.serverSeed))
	return hex.EncodeToString(sum[:])
}

// Nonce returns how many draws have been made so far.
func (f *FairSource) Nonce() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce
}

// Rotate swaps in a new server seed and resets the nonce. It returns the
// retired seed so it can be disclosed for verification of past rounds.
func (f *FairSource) Rotate(serverSeed string) (retired string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	retired = f.serverSeed
	f.serverSeed = serverSeed
	f.nonce = 0
	return retired
}

func (f *FairSource) draw() uint64 {
	mac := hmac.New(sha256.New, []byte(f.serverSeed))
	fmt.Fprintf(mac, "%s:%d", f.clientSeed, f.nonce)
	f.nonce++
	digest := hex.EncodeToString(mac.Sum(nil))
	// First 8 hex chars give 32 bits, plenty for game-sized ranges.
	v, err := strconv.ParseUint(digest[:8], 16, 64)
	if err != nil {
		panic("random: fair draw parse: " + err.Error())
	}
	return v
}

func (f *FairSource) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn with non-positive n")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.draw() % uint64(n))
}

func (f *FairSource) Shuffle(n int, swap func(i, j int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := n - 1; i > 0; i-- {
		j := int(f.draw() % uint64(i+1))
		swap(i, j)
	}
}
