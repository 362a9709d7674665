package service

// Observer receives lifecycle notifications from a Driver. It is a capability
// set: implement any of WillPerformAppSwitchObserver, DidPerformAppSwitchObserver
// and WillProcessAppSwitchReturnObserver. Methods that are not implemented are
// simply not called.
type Observer any

// WillPerformAppSwitchObserver is notified right before the app switch
type WillPerformAppSwitchObserver interface {
	WillPerformAppSwitch(d *Driver)
}

// DidPerformAppSwitchObserver is notified once the app switch succeeded.
// Users may come back to the host app manually, without a return URL.
type DidPerformAppSwitchObserver interface {
	DidPerformAppSwitch(d *Driver)
}

// WillProcessAppSwitchReturnObserver is notified when a return URL is
// handed to the driver, before it is parsed
type WillProcessAppSwitchReturnObserver interface {
	WillProcessAppSwitchReturn(d *Driver)
}

// ObserverFuncs adapts plain functions to the observer capabilities.
// Nil fields are no-ops.
type ObserverFuncs struct {
	WillPerformAppSwitchFunc       func(d *Driver)
	DidPerformAppSwitchFunc        func(d *Driver)
	WillProcessAppSwitchReturnFunc func(d *Driver)
}

func (f ObserverFuncs) WillPerformAppSwitch(d *Driver) {
	if f.WillPerformAppSwitchFunc != nil {
		f.WillPerformAppSwitchFunc(d)
	}
}

func (f ObserverFuncs) DidPerformAppSwitch(d *Driver) {
	if f.DidPerformAppSwitchFunc != nil {
		f.DidPerformAppSwitchFunc(d)
	}
}

func (f ObserverFuncs) WillProcessAppSwitchReturn(d *Driver) {
	if f.WillProcessAppSwitchReturnFunc != nil {
		f.WillProcessAppSwitchReturnFunc(d)
	}
}

// MultiObserver fans notifications out to several observers
type MultiObserver []Observer

func (m MultiObserver) WillPerformAppSwitch(d *Driver) {
	for _, o := range m {
		if obs, ok := o.(WillPerformAppSwitchObserver); ok {
			obs.WillPerformAppSwitch(d)
		}
	}
}

func (m MultiObserver) DidPerformAppSwitch(d *Driver) {
	for _, o := range m {
		if obs, ok := o.(DidPerformAppSwitchObserver); ok {
			obs.DidPerformAppSwitch(d)
		}
	}
}

func (m MultiObserver) WillProcessAppSwitchReturn(d *Driver) {
	for _, o := range m {
		if obs, ok := o.(WillProcessAppSwitchReturnObserver); ok {
			obs.WillProcessAppSwitchReturn(d)
		}
	}
}

// Registration ties an observer to a driver without the driver owning it
type Registration struct {
	driver *Driver
	slot   *observerSlot
}

type observerSlot struct {
	observer Observer
}

// Close detaches the observer. Further notifications are dropped.
func (r *Registration) Close() {
	if r == nil || r.driver == nil {
		return
	}
	r.driver.mu.Lock()
	defer r.driver.mu.Unlock()

	if r.driver.observer == r.slot {
		r.driver.observer = nil
	}
}
