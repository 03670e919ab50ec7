package registry

import (
	"github.com/fatih/structs"
	log "github.com/sirupsen/logrus"
)

// auditEntry describes a committed state change
type auditEntry struct {
	Action      string `structs:"action"`
	Issuer      string `structs:"issuer,omitempty"`
	Certificate string `structs:"certificate,omitempty"`
	Template    string `structs:"template,omitempty"`
	Requester   string `structs:"requester,omitempty"`
	TxID        string `structs:"tx_id"`
	Height      uint64 `structs:"height"`
}

func (a auditEntry) log(msg string) {
	log.WithFields(structs.Map(a)).Info(msg)
}
