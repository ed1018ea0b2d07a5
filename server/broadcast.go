package server

// 广播按固定阶段进行，阶段间顺序不可调换：
//  1. 问候新实体：Hello + 已存在实体（含本 Tick 先加入者）及其当前意图
//  2. 向其他实体宣告新实体
//  3. 宣告离开
//  4. 转发移动意图（先更新权威标志，再广播）

// greetJoined 阶段 1：逐个把新实体放入世界并发送问候
func (r *Room) greetJoined(joined []Event) []*Player {
	greeted := make([]*Player, 0, len(joined))
	for _, ev := range joined {
		r.isolate("greet", ev.ID, func() {
			p := &Player{ID: ev.ID, X: ev.X, Y: ev.Y, Style: ev.Style, Conn: r.takeConn(ev.ID)}
			if !r.world.Add(p) {
				return
			}
			greeted = append(greeted, p)
			r.metrics.IncJoined()

			r.send(p, encodeHello(p))
			r.world.Each(func(other *Player) {
				if other.ID == p.ID {
					return
				}
				r.send(p, encodePeerJoined(other))
				for _, dir := range allDirections {
					if other.Moving[dir] {
						r.send(p, encodePeerMoving(other, dir, true))
					}
				}
			})
		})
	}
	return greeted
}

// announceJoined 阶段 2：同一 Tick 中后加入者已在阶段 1 得知先加入者，此处不再重复
func (r *Room) announceJoined(greeted []*Player) {
	order := make(map[EntityID]int, len(greeted))
	for i, p := range greeted {
		order[p.ID] = i
	}
	for i, p := range greeted {
		r.isolate("announce", p.ID, func() {
			msg := encodePeerJoined(p)
			r.world.Each(func(other *Player) {
				if other.ID == p.ID {
					return
				}
				if j, ok := order[other.ID]; ok && j > i {
					return
				}
				r.send(other, msg)
			})
		})
	}
}

// announceLeft 阶段 3：本 Tick 新加入者从未见过离开者，不向其发送
func (r *Room) announceLeft(departed []EntityID, greeted []*Player) {
	fresh := make(map[EntityID]bool, len(greeted))
	for _, p := range greeted {
		fresh[p.ID] = true
	}
	for _, id := range departed {
		r.isolate("leave", id, func() {
			msg := encodePeerLeft(id)
			r.world.Each(func(other *Player) {
				if fresh[other.ID] {
					return
				}
				r.send(other, msg)
			})
		})
	}
}

// relayMoves 阶段 4：按到达顺序处理；发起者已离开的事件直接丢弃
// 权威标志只是置位，重复意图不累加；转发不去重
func (r *Room) relayMoves(moves []Event) {
	for _, ev := range moves {
		r.isolate("move", ev.ID, func() {
			p, ok := r.world.Get(ev.ID)
			if !ok {
				r.metrics.IncStaleMove()
				return
			}
			p.Moving[ev.Move.Direction] = ev.Move.Start
			msg := encodePeerMoving(p, ev.Move.Direction, ev.Move.Start)
			r.world.Each(func(other *Player) {
				r.send(other, msg)
			})
			r.metrics.IncMoveRelayed()
		})
	}
}

// send 即发即弃；发送失败按离开处理：关闭连接，由读泵登记 Left
// 连接实现的异常同样视为发送失败，只影响该接收者
func (r *Room) send(p *Player, msg []byte) {
	if p.Conn == nil || p.dropped {
		return
	}
	var sent bool
	if !r.isolate("send", p.ID, func() { sent = p.Conn.Send(msg) }) {
		p.dropped = true
		r.isolate("close", p.ID, p.Conn.Close)
		return
	}
	if sent {
		r.metrics.IncSent()
		return
	}
	p.dropped = true
	r.metrics.IncSendOverflow()
	Log.Warnw("send queue overflow, closing connection", "room", r.ID, "id", p.ID)
	r.isolate("close", p.ID, p.Conn.Close)
}
