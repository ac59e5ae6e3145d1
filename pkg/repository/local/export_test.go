package local

// CachedPartitions reports how many owners have a cached partition handle
func (s *Store) CachedPartitions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.partitions)
}
