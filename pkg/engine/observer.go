package engine

import "github.com/goliatone/go-softlimit/pkg/counter"

// Observer receives binding lifecycle notifications. Calls happen on the
// engine's loop.
type Observer interface {
	StateChanged(b *Binding, from, to State)
	Updated(b *Binding, reading counter.Reading)
	Abandoned(b *Binding, attempts int)
}

// ObserverFuncs adapts optional functions to Observer.
type ObserverFuncs struct {
	OnStateChange func(b *Binding, from, to State)
	OnUpdate      func(b *Binding, reading counter.Reading)
	OnAbandon     func(b *Binding, attempts int)
}

func (o ObserverFuncs) StateChanged(b *Binding, from, to State) {
	if o.OnStateChange != nil {
		o.OnStateChange(b, from, to)
	}
}

func (o ObserverFuncs) Updated(b *Binding, reading counter.Reading) {
	if o.OnUpdate != nil {
		o.OnUpdate(b, reading)
	}
}

func (o ObserverFuncs) Abandoned(b *Binding, attempts int) {
	if o.OnAbandon != nil {
		o.OnAbandon(b, attempts)
	}
}

type observers []Observer

func (list observers) StateChanged(b *Binding, from, to State) {
	for _, o := range list {
		o.StateChanged(b, from, to)
	}
}

func (list observers) Updated(b *Binding, reading counter.Reading) {
	for _, o := range list {
		o.Updated(b, reading)
	}
}

func (list observers) Abandoned(b *Binding, attempts int) {
	for _, o := range list {
		o.Abandoned(b, attempts)
	}
}
