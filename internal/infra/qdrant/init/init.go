package infra_qdrant_init

import (
	"log"

	"github.com/humanbelnik/moviematch/internal/config"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

func MustEstablishConn(cfg config.Qdrant) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		APIKey:      cfg.APIKey,
		UseTLS:      cfg.UseTLS,
		GrpcOptions: []grpc.DialOption{grpc.WithUserAgent("moviematch")},
	})
	if err != nil {
		log.Fatal("qdrant connect failed", err)
	}

	return client
}
