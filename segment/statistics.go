package segment

// Statistics summarizes allocation activity of a store.
type Statistics struct {
	AllocationCount int
	FreeCount       int
	LiveCount       int
	LiveBytes       int
	PeakLiveBytes   int
	AllocatedBytes  int
	SizeMin         int
	SizeMax         int
}

func (s *Statistics) addAllocation(size int) {
	s.AllocationCount++
	s.LiveCount++
	s.LiveBytes += size
	s.AllocatedBytes += size

	if s.LiveBytes > s.PeakLiveBytes {
		s.PeakLiveBytes = s.LiveBytes
	}
	if s.SizeMin == 0 || size < s.SizeMin {
		s.SizeMin = size
	}
	if size > s.SizeMax {
		s.SizeMax = size
	}
}

func (s *Statistics) addFree(size int) {
	s.FreeCount++
	s.LiveCount--
	s.LiveBytes -= size
}
