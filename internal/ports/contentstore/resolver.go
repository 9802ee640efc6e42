package contentstore

import "context"

// Resolver deref-erencia un puntero opaco contra el storage externo.
// El core de autorización nunca interpreta el puntero; solo este borde
// lo usa, y recién después de que el caller pasó el check de permisos.
// Devuelve el payload (cifrado por el caller/storage) y su content type.
type Resolver interface {
	Fetch(ctx context.Context, pointer string) (payload []byte, contentType string, err error)
}
