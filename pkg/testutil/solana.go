package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-multisig/pkg/solana"
)

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeypairs(t *testing.T, n int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, n)
	for i := 0; i < n; i++ {
		keys[i] = GenerateSolanaKeypair(t)
	}
	return keys
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

// SignedTransaction compiles instructions into a transaction paid by the
// first signer and signs it with every signer. A random blockhash keeps
// otherwise identical transactions distinct.
func SignedTransaction(t *testing.T, signers []ed25519.PrivateKey, instructions ...solana.Instruction) solana.Transaction {
	require.NotEmpty(t, signers)

	var blockhash solana.Blockhash
	_, err := rand.Read(blockhash[:])
	require.NoError(t, err)

	txn := solana.NewTransaction(signers[0].Public().(ed25519.PublicKey), instructions...)
	txn.SetBlockhash(blockhash)
	require.NoError(t, txn.Sign(signers...))
	return txn
}
