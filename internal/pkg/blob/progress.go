package blob

import (
	"context"
	"io"
	"sync/atomic"
)

// Event 上传进度，Done 为 true 时是最后一条
type Event struct {
	Written int64
	Total   int64
	URL     string
	Err     error
	Done    bool
}

// Percent 未知总大小时返回 -1
func (e Event) Percent() int {
	if e.Total <= 0 {
		return -1
	}
	return int(e.Written * 100 / e.Total)
}

type progressReader struct {
	r       io.Reader
	total   int64
	written atomic.Int64
	emit    func(written int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.emit(p.written.Add(int64(n)))
	}
	return n, err
}

// UploadWithProgress 异步上传，调用方必须读到 Done 事件，否则协程不会退出
func UploadWithProgress(ctx context.Context, store Store, objectName, contentType string, r io.Reader, size int64) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		pr := &progressReader{r: r, total: size}
		pr.emit = func(written int64) {
			// 消费方跟不上时丢弃中间进度
			select {
			case events <- Event{Written: written, Total: size}:
			default:
			}
		}
		url, err := store.Put(ctx, objectName, contentType, pr, size)
		events <- Event{Written: pr.written.Load(), Total: size, URL: url, Err: err, Done: true}
	}()
	return events
}

// Wait 消费全部事件并返回最终结果，onProgress 可为空
func Wait(events <-chan Event, onProgress func(Event)) (string, error) {
	var last Event
	for ev := range events {
		if ev.Done {
			last = ev
			continue
		}
		if onProgress != nil {
			onProgress(ev)
		}
	}
	return last.URL, last.Err
}
