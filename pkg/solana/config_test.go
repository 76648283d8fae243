package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEndpoint(t *testing.T) {
	assert.Equal(t, string(EnvironmentDev), ResolveEndpoint("devnet"))
	assert.Equal(t, string(EnvironmentProd), ResolveEndpoint("mainnet-beta"))
	assert.Equal(t, string(EnvironmentLocal), ResolveEndpoint("localnet"))
	assert.Equal(t, "http://rpc.example:8899", ResolveEndpoint("http://rpc.example:8899"))
}
