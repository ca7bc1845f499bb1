package ports

import "context"

// ObjectStorage almacenamiento de archivos generados (kits de bienvenida).
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	// DownloadURL devuelve una URL temporal de descarga para key.
	DownloadURL(ctx context.Context, key string) (string, error)
}
