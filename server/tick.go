package server

import "time"

// StartTicker 启动房间的 Tick 循环（单线程推进世界）
// 下一次 Tick 从本次结束时起算：负载下会产生墙钟漂移，不追帧
func (r *Room) StartTicker() {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.stop != nil {
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.loop(r.stop, r.done)
}

// Stop 停止 Tick 循环并等待当前 Tick 结束
func (r *Room) Stop() {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.stop, r.done = nil, nil
}

func (r *Room) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := r.cfg.TickInterval()
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			// 核心循环：处理事件 → 广播 → 推进世界
			r.safeStep()
			timer.Reset(interval)
		}
	}
}

// safeStep 单个 Tick 的异常不能终止循环
func (r *Room) safeStep() {
	defer func() {
		if rec := recover(); rec != nil {
			Log.Errorw("tick panicked", "room", r.ID, "tick", r.TickSeq(), "panic", rec)
		}
	}()
	r.Step()
}
