package providers

import (
	"github.com/samber/do/v2"

	"github.com/chaekjang/chaekjang-server/internal/config"
	"github.com/chaekjang/chaekjang-server/internal/logger"
	"github.com/chaekjang/chaekjang-server/internal/media/covers"
	"github.com/chaekjang/chaekjang-server/internal/metadata/kakao"
)

// KakaoClientHandle wraps the Kakao client with shutdown capability.
type KakaoClientHandle struct {
	*kakao.Client
}

// Shutdown implements do.Shutdownable.
func (h *KakaoClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideKakaoClient provides the Kakao book-search client.
func ProvideKakaoClient(i do.Injector) (*KakaoClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Kakao.RESTAPIKey == "" {
		log.Warn("Kakao REST API key not configured, book search will fail upstream")
	}

	client := kakao.NewClient(cfg.Kakao.RESTAPIKey, log.Logger)

	return &KakaoClientHandle{Client: client}, nil
}

// ProvideCoverFetcher provides the cover blurhash fetcher.
func ProvideCoverFetcher(i do.Injector) (*covers.Fetcher, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return covers.NewFetcher(log.Logger), nil
}
