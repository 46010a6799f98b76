package hid

// reportBuffer implements the exchange convention shared by every
// report operation: the caller picks a capacity, the native call
// reports how many bytes it produced, and only that prefix is data.
type reportBuffer struct {
	data []byte
}

func newReportBuffer(capacity int) reportBuffer {
	return reportBuffer{data: make([]byte, capacity)}
}

// newReportIDBuffer places the report id in byte 0, where the native
// feature and input report calls expect it. Capacity must be at least 1.
func newReportIDBuffer(reportID byte, capacity int) reportBuffer {
	b := newReportBuffer(capacity)
	b.data[0] = reportID
	return b
}

func (b reportBuffer) bytes() []byte { return b.data }

// take returns the n bytes the native call produced. Anything beyond n
// is allocation, not data.
func (b reportBuffer) take(n int) []byte {
	return b.data[:n]
}
