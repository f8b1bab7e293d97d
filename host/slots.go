package host

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/hostfuncs"
	"github.com/AtriKawaii/atri-go/loader"
	"github.com/AtriKawaii/atri-go/message"
)

// slots returns the host functions the manager serves. Every func type
// matches its loader.VTable field exactly.
func (m *Manager) slots() []hostfuncs.RegistryOption {
	return []hostfuncs.RegistryOption{
		hostfuncs.WithSlot(loader.IDPluginManagerSpawn, func(_ unsafe.Pointer, fut ffi.Future[ffi.Managed]) ffi.Future[ffi.Result[ffi.Managed]] {
			return m.exec.Spawn(fut)
		}),
		hostfuncs.WithSlot(loader.IDPluginManagerBlockOn, func(_ unsafe.Pointer, fut ffi.Future[ffi.Managed]) ffi.Managed {
			return m.exec.BlockOn(fut)
		}),

		hostfuncs.WithSlot(loader.IDNewListener, m.bus.AddListener),
		hostfuncs.WithSlot(loader.IDListenerNextEventWithPriority, m.bus.NextEvent),

		hostfuncs.WithSlot(loader.IDEventIntercept, func(flag unsafe.Pointer) {
			(*atomic.Bool)(flag).Store(true)
		}),
		hostfuncs.WithSlot(loader.IDEventIsIntercepted, func(flag unsafe.Pointer) bool {
			return (*atomic.Bool)(flag).Load()
		}),

		hostfuncs.WithSlot(loader.IDNamedMemberGetID, func(member unsafe.Pointer) int64 {
			return (*Sender)(member).ID
		}),
		hostfuncs.WithSlot(loader.IDNamedMemberGetNickname, func(member unsafe.Pointer) ffi.Str {
			return ffi.StrFrom((*Sender)(member).Nickname)
		}),
		hostfuncs.WithSlot(loader.IDNamedMemberGetCardName, func(member unsafe.Pointer) ffi.Str {
			return ffi.StrFrom((*Sender)(member).CardName)
		}),

		hostfuncs.WithSlot(loader.IDImageGetID, func(img unsafe.Pointer) ffi.Str {
			return ffi.StrFrom((*Image)(img).ID)
		}),
		hostfuncs.WithSlot(loader.IDImageGetURL, func(img unsafe.Pointer) ffi.String {
			return ffi.StringFrom((*Image)(img).URL)
		}),

		hostfuncs.WithSlot(loader.IDGroupMessageEventGetMessage, func(ev unsafe.Pointer) ffi.MessageChain {
			return (*GroupMessage)(ev).Message.Clone().ToFFI()
		}),
		hostfuncs.WithSlot(loader.IDGroupMessageEventGetSender, func(ev unsafe.Pointer) ffi.Member {
			s := (*GroupMessage)(ev).Sender
			return ffi.Member{IsNamed: s.Named, Inner: ffi.CloneableCopy(s)}
		}),
		hostfuncs.WithSlot(loader.IDFriendMessageEventGetMessage, func(ev unsafe.Pointer) ffi.MessageChain {
			return (*FriendMessage)(ev).Message.Clone().ToFFI()
		}),

		hostfuncs.WithSlot(loader.IDLog, m.log),
		hostfuncs.WithSlot(loader.IDEnvGetWorkspace, m.workspace),

		hostfuncs.WithSlot(loader.IDMessageChainToJSON, m.chainToJSON),
		hostfuncs.WithSlot(loader.IDMessageChainFromJSON, m.chainFromJSON),
	}
}

// Plugin log levels, as sent through the log slot.
const (
	levelTrace uint8 = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

func zapLevel(level uint8) zapcore.Level {
	switch level {
	case levelTrace, levelDebug:
		return zapcore.DebugLevel
	case levelWarn:
		return zapcore.WarnLevel
	case levelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (m *Manager) log(handle uintptr, _ unsafe.Pointer, level uint8, msg ffi.Str) {
	m.logger.Log(zapLevel(level), msg.String(), zap.String("plugin", m.pluginName(handle)))
}

// workspace returns the plugin's private directory, creating it on first
// use. An empty string means the directory could not be created.
func (m *Manager) workspace(handle uintptr, _ unsafe.Pointer) ffi.String {
	dir := filepath.Join(m.cfg.workspace, m.pluginName(handle))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Error("create plugin workspace", zap.String("dir", dir), zap.Error(err))
		return ffi.StringFrom("")
	}
	return ffi.StringFrom(dir)
}

func (m *Manager) chainToJSON(chain ffi.MessageChain) ffi.String {
	defer func() {
		c := message.FromFFI(chain)
		c.Release()
	}()
	data, err := encodeChain(chain)
	if err != nil {
		m.logger.Error("encode message chain", zap.Error(err))
		return ffi.StringFrom("")
	}
	return ffi.StringFromBytes(data)
}

func (m *Manager) chainFromJSON(data ffi.Str) ffi.Result[ffi.MessageChain] {
	chain, err := decodeChain([]byte(data.Borrow()))
	if err != nil {
		return ffi.FailureFrom[ffi.MessageChain](err)
	}
	return ffi.Ok(chain)
}
