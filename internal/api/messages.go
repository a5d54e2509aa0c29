package api

import "time"

type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Picture    string `json:"picture,omitempty"`
	BlockCount int    `json:"block_count"`
}

type Block struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Content   string    `json:"content"`
	GroupKey  int64     `json:"group_key"`
	SeqNum    int64     `json:"seq_num"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type RegisterResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// LoginResponse carries an identity token for the authorization metadata.
type LoginResponse struct {
	Token string `json:"token"`
}

// ExternalLoginRequest carries an assertion signed by the identity broker.
type ExternalLoginRequest struct {
	Assertion string `json:"assertion"`
}

type MeRequest struct{}

type MeResponse struct {
	User *User `json:"user"`
}

// CreateBlockRequest carries GroupKey and SeqNum as pointers so a missing
// field is told apart from an explicit zero.
type CreateBlockRequest struct {
	Label    string `json:"label"`
	Content  string `json:"content"`
	GroupKey *int64 `json:"group_key"`
	SeqNum   *int64 `json:"seq_num"`
}

type CreateBlockResponse struct {
	Block *Block `json:"block"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	GroupKeys []int64 `json:"group_keys"`
}

// ListBlocksRequest filters by label; an empty label lists every block.
type ListBlocksRequest struct {
	Label string `json:"label,omitempty"`
}

type ListBlocksResponse struct {
	Blocks []*Block `json:"blocks"`
}

type ListGroupRequest struct {
	GroupKey *int64 `json:"group_key"`
}

type DeleteGroupRequest struct {
	GroupKey *int64 `json:"group_key"`
}

// Int64 returns a pointer to v, for the required numeric request fields.
func Int64(v int64) *int64 { return &v }

type DeleteGroupResponse struct {
	Deleted int64 `json:"deleted"`
}

type CheckConsistencyRequest struct {
	Repair bool `json:"repair"`
}

type CheckConsistencyResponse struct {
	Dangling []string `json:"dangling"`
	Orphaned []string `json:"orphaned"`
	Repaired bool     `json:"repaired"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
