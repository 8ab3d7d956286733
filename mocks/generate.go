package mocks

//go:generate mockgen -destination=./mock_directory.go -package=mocks github.com/quantra-lab/contango/internal/directory Directory
//go:generate mockgen -destination=./mock_cache.go -package=mocks github.com/quantra-lab/contango/internal/cache BarCache
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/quantra-lab/contango/internal/provider Provider
