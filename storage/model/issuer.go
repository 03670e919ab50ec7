package model

import (
	"time"
)

// Issuer is an entity of the issuer directory. Issuers are never deleted;
// revoking issuance rights sets Authorized to false.
type Issuer struct {
	Identity     string `msgpack:"identity" json:"identity"`
	Name         string `msgpack:"name" json:"name"`
	Organization string `msgpack:"organization" json:"organization"`
	Authorized   bool   `msgpack:"authorized" json:"authorized"`
	// TotalCertificates only ever grows, by one per successful issuance
	TotalCertificates uint64    `msgpack:"total_certificates" json:"total_certificates"`
	RegisteredAt      time.Time `msgpack:"registered_at" json:"registered_at"`
	UpdatedAt         time.Time `msgpack:"updated_at" json:"updated_at"`
}
