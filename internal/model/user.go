package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  The password hash and the active session token are
// never serialized; handlers define separate response types with
// appropriate JSON tags.
//
// A user holds at most one live session at a time: ActiveToken is
// overwritten on every login and cleared on logout, so issuing a
// new token anywhere implicitly ends any previous session.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name, 2..50 characters.
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hashed password.
//  ActiveToken  – the currently valid session token ("" when logged out).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    ActiveToken  string    // users.active_token ("" = no session)
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
