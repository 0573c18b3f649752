package schema

// UsersTable represents the 'neverbeen.users' table
type UsersTable struct {
	Table          string
	Email          string
	Username       string
	Verified       string
	PasswordHash   string
	AccessLevel    string
	AccountCreated string
}

// Users is the schema definition for neverbeen.users
var Users = UsersTable{
	Table:          "neverbeen.users",
	Email:          "email",
	Username:       "username",
	Verified:       "verified",
	PasswordHash:   "passwordhash",
	AccessLevel:    "accesslevel",
	AccountCreated: "accountcreated",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{
		t.Email, t.Username, t.Verified, t.PasswordHash,
		t.AccessLevel, t.AccountCreated,
	}
}

// TokensTable represents the 'neverbeen.tokens' table
type TokensTable struct {
	Table   string
	Email   string
	Type    string
	Token   string
	Expires string
}

// Tokens is the schema definition for neverbeen.tokens
var Tokens = TokensTable{
	Table:   "neverbeen.tokens",
	Email:   "email",
	Type:    "type",
	Token:   "token",
	Expires: "expires",
}

// Columns returns all standard column names
func (t TokensTable) Columns() []string {
	return []string{t.Email, t.Type, t.Token, t.Expires}
}
