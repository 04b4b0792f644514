package services

// StateStore is the opaque key-value persistence the pipeline runs on: the
// share queue, dedup buffers, the last-shared marker and instant-share guards
// all live behind it. Durability is whatever the backing store provides.
type StateStore interface {
	// GetState unmarshals the value stored under key into dest and reports
	// whether the key existed.
	GetState(key string, dest interface{}) (bool, error)
	SetState(key string, value interface{}) error
	DeleteState(key string) error
}
