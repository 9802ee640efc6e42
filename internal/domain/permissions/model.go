package permissions

import "time"

// Permission es el permiso que el owner otorga sobre un record.
// A lo sumo una entrada por (record, grantee); un nuevo grant pisa
// el anterior (overwrite, no merge). No expira solo.
type Permission struct {
	RecordID uint64
	Grantee  string

	CanRead  bool
	CanWrite bool

	GrantedAt time.Time
}
