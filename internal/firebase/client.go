package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Client contém os clientes Firebase usados pelo backend.
type Client struct {
	App       *firebase.App
	Firestore *firestore.Client
}

// InitFirebase inicializa o app Firebase e o cliente Firestore.
// credentialsPath tem prioridade sobre credentialsJSON.
func InitFirebase(ctx context.Context, credentialsPath, credentialsJSON string) (*Client, error) {
	var opt option.ClientOption

	if credentialsPath != "" {
		// Desenvolvimento local: arquivo de credenciais
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("arquivo de credenciais não existe: %s", credentialsPath)
		}
		opt = option.WithCredentialsFile(credentialsPath)
	} else {
		// Produção: JSON na variável de ambiente
		if credentialsJSON == "" {
			return nil, fmt.Errorf("defina FIREBASE_CREDENTIALS_PATH ou FIREBASE_CREDENTIALS_JSON")
		}
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar o Firebase App: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar o Firestore: %w", err)
	}

	log.Info().Msg("Firebase inicializado")
	return &Client{App: app, Firestore: fs}, nil
}

// Close encerra a conexão com o Firestore.
func (c *Client) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
