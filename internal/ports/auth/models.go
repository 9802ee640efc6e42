package auth

// Claims representa la identidad extraída del token de sesión.
// Principal es opaco para el core: solo se compara por igualdad.
type Claims struct {
	Principal string
	PublicKey string
}
