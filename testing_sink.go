package libee

import (
	"github.com/stretchr/testify/mock"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Write(f Frame) error {
	args := m.Called(f)
	return args.Error(0)
}

func (m *mockSink) Close() {
	m.Called()
}

func (m *mockSink) CloseChan() CloseChan {
	args := m.Called()
	return args.Get(0).(CloseChan)
}

func (m *mockSink) CloseErr() error {
	args := m.Called()
	return args.Error(0)
}

type mockFrameSource struct {
	ReadFunc func() (Frame, error)
}

func (m *mockFrameSource) Read() (Frame, error) {
	return m.ReadFunc()
}

// queueFrameSource replays a fixed set of frames, then fails with err.
type queueFrameSource struct {
	frames []Frame
	err    error
}

func (q *queueFrameSource) Read() (Frame, error) {
	if len(q.frames) == 0 {
		return Frame{}, q.err
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f, nil
}
