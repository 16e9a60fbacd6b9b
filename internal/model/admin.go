package model

// Admin is an authentication principal from the `admins` table.  The
// password column stores a bcrypt hash; Token holds the current opaque
// session credential and is overwritten on every login, which is what
// invalidates any previous session for the same admin.
type Admin struct {
	ID             uint64  // admins.id
	Username       string  // admins.username (unique)
	PasswordHash   string  // admins.password
	NombreCompleto *string // admins.nombre_completo (nullable)
	Token          *string // admins.token (nullable, current session)
}

// AdminInfo is the listing shape exposed to the admin panel.  The hash
// and token never leave the repository layer.
type AdminInfo struct {
	ID             uint64  `json:"id"`
	Username       string  `json:"username"`
	NombreCompleto *string `json:"nombre_completo"`
}
