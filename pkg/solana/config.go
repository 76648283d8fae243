package solana

// Environment is the JSON RPC endpoint of a Solana cluster.
type Environment string

const (
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

var environmentsByCluster = map[string]Environment{
	"localnet":     EnvironmentLocal,
	"devnet":       EnvironmentDev,
	"testnet":      EnvironmentTest,
	"mainnet-beta": EnvironmentProd,
}

// ResolveEndpoint maps a cluster moniker such as "devnet" to its public RPC
// endpoint. Anything else is returned as is.
func ResolveEndpoint(endpoint string) string {
	if env, ok := environmentsByCluster[endpoint]; ok {
		return string(env)
	}
	return endpoint
}
