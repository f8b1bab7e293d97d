package loader

import (
	"unsafe"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Unit is the empty success value of host operations.
type Unit = struct{}

// VTable holds every host function the plugin calls. Fields are filled
// from the host lookup once, during Init; an id the host does not know
// leaves its field nil.
type VTable struct {
	PluginManagerSpawn   func(manager unsafe.Pointer, fut ffi.Future[ffi.Managed]) ffi.Future[ffi.Result[ffi.Managed]]
	PluginManagerBlockOn func(manager unsafe.Pointer, fut ffi.Future[ffi.Managed]) ffi.Managed

	NewListener                   func(concurrent bool, handler ffi.Fn[ffi.Event, ffi.Future[bool]], priority uint8) ffi.Managed
	ListenerNextEventWithPriority func(millis uint64, filter ffi.Fn[ffi.Event, bool], priority uint8) ffi.Future[ffi.Option[ffi.Event]]

	EventIntercept     func(intercepted unsafe.Pointer)
	EventIsIntercepted func(intercepted unsafe.Pointer) bool

	ClientGetID       func(client ffi.Handle) int64
	ClientGetNickname func(client ffi.Handle) ffi.String
	ClientGetList     func() ffi.Vec[ffi.Handle]
	FindClient        func(id int64) ffi.Handle
	ClientFindGroup   func(client ffi.Handle, id int64) ffi.Handle
	ClientFindFriend  func(client ffi.Handle, id int64) ffi.Handle
	ClientGetGroups   func(client ffi.Handle) ffi.Vec[ffi.Handle]
	ClientGetFriends  func(client ffi.Handle) ffi.Vec[ffi.Handle]
	ClientClone       func(client ffi.Handle) ffi.Handle
	ClientDrop        func(client ffi.Handle)

	GroupGetID              func(group ffi.Handle) int64
	GroupGetName            func(group ffi.Handle) ffi.Str
	GroupGetClient          func(group ffi.Handle) ffi.PHandle
	GroupGetMembers         func(group ffi.Handle) ffi.Future[ffi.Vec[ffi.ManagedCloneable]]
	GroupFindMember         func(group ffi.Handle, id int64) ffi.Future[ffi.ManagedCloneable]
	GroupSendMessage        func(group ffi.Handle, chain ffi.MessageChain) ffi.Future[ffi.Result[ffi.MessageReceipt]]
	GroupUploadImage        func(group ffi.Handle, data ffi.Vec[byte]) ffi.Future[ffi.Result[ffi.ManagedCloneable]]
	GroupQuit               func(group ffi.Handle) ffi.Future[bool]
	GroupChangeName         func(group ffi.Handle, name ffi.Str) ffi.Future[ffi.Result[Unit]]
	GroupSendForwardMessage func(group ffi.Handle, nodes ffi.Vec[ffi.ForwardNode]) ffi.Future[ffi.Result[ffi.MessageReceipt]]
	GroupInvite             func(group ffi.Handle, id int64) ffi.Future[ffi.Result[Unit]]
	GroupClone              func(group ffi.Handle) ffi.Handle
	GroupDrop               func(group ffi.Handle)

	FriendGetID       func(friend ffi.Handle) int64
	FriendGetNickname func(friend ffi.Handle) ffi.Str
	FriendGetClient   func(friend ffi.Handle) ffi.PHandle
	FriendSendMessage func(friend ffi.Handle, chain ffi.MessageChain) ffi.Future[ffi.Result[ffi.MessageReceipt]]
	FriendUploadImage func(friend ffi.Handle, data ffi.Vec[byte]) ffi.Future[ffi.Result[ffi.ManagedCloneable]]
	FriendClone       func(friend ffi.Handle) ffi.Handle
	FriendDrop        func(friend ffi.Handle)

	NamedMemberGetID          func(member unsafe.Pointer) int64
	NamedMemberGetNickname    func(member unsafe.Pointer) ffi.Str
	NamedMemberGetCardName    func(member unsafe.Pointer) ffi.Str
	NamedMemberGetGroup       func(member unsafe.Pointer) ffi.PHandle
	NamedMemberChangeCardName func(member unsafe.Pointer, card ffi.Str) ffi.Future[ffi.Result[Unit]]

	ImageGetID  func(image unsafe.Pointer) ffi.Str
	ImageGetURL func(image unsafe.Pointer) ffi.String

	GroupMessageEventGetGroup   func(event unsafe.Pointer) ffi.PHandle
	GroupMessageEventGetMessage func(event unsafe.Pointer) ffi.MessageChain
	GroupMessageEventGetSender  func(event unsafe.Pointer) ffi.Member

	FriendMessageEventGetFriend  func(event unsafe.Pointer) ffi.PHandle
	FriendMessageEventGetMessage func(event unsafe.Pointer) ffi.MessageChain

	Log func(handle uintptr, manager unsafe.Pointer, level uint8, msg ffi.Str)

	EnvGetWorkspace func(handle uintptr, manager unsafe.Pointer) ffi.String

	MessageChainToJSON   func(chain ffi.MessageChain) ffi.String
	MessageChainFromJSON func(data ffi.Str) ffi.Result[ffi.MessageChain]
}

// Binding names one VTable slot.
type Binding struct {
	ID   uint16
	Name string
}

type binding struct {
	Binding
	slot func(vt *VTable) unsafe.Pointer
}

func bind[F any](id uint16, name string, field func(vt *VTable) *F) binding {
	return binding{
		Binding: Binding{ID: id, Name: name},
		slot:    func(vt *VTable) unsafe.Pointer { return unsafe.Pointer(field(vt)) },
	}
}

var bindings = []binding{
	bind(IDPluginManagerSpawn, "plugin_manager_spawn", func(vt *VTable) *func(unsafe.Pointer, ffi.Future[ffi.Managed]) ffi.Future[ffi.Result[ffi.Managed]] {
		return &vt.PluginManagerSpawn
	}),
	bind(IDPluginManagerBlockOn, "plugin_manager_block_on", func(vt *VTable) *func(unsafe.Pointer, ffi.Future[ffi.Managed]) ffi.Managed {
		return &vt.PluginManagerBlockOn
	}),

	bind(IDNewListener, "new_listener", func(vt *VTable) *func(bool, ffi.Fn[ffi.Event, ffi.Future[bool]], uint8) ffi.Managed {
		return &vt.NewListener
	}),
	bind(IDListenerNextEventWithPriority, "listener_next_event_with_priority", func(vt *VTable) *func(uint64, ffi.Fn[ffi.Event, bool], uint8) ffi.Future[ffi.Option[ffi.Event]] {
		return &vt.ListenerNextEventWithPriority
	}),

	bind(IDEventIntercept, "event_intercept", func(vt *VTable) *func(unsafe.Pointer) { return &vt.EventIntercept }),
	bind(IDEventIsIntercepted, "event_is_intercepted", func(vt *VTable) *func(unsafe.Pointer) bool { return &vt.EventIsIntercepted }),

	bind(IDClientGetID, "client_get_id", func(vt *VTable) *func(ffi.Handle) int64 { return &vt.ClientGetID }),
	bind(IDClientGetNickname, "client_get_nickname", func(vt *VTable) *func(ffi.Handle) ffi.String { return &vt.ClientGetNickname }),
	bind(IDClientGetList, "client_get_list", func(vt *VTable) *func() ffi.Vec[ffi.Handle] { return &vt.ClientGetList }),
	bind(IDFindClient, "find_client", func(vt *VTable) *func(int64) ffi.Handle { return &vt.FindClient }),
	bind(IDClientFindGroup, "client_find_group", func(vt *VTable) *func(ffi.Handle, int64) ffi.Handle { return &vt.ClientFindGroup }),
	bind(IDClientFindFriend, "client_find_friend", func(vt *VTable) *func(ffi.Handle, int64) ffi.Handle { return &vt.ClientFindFriend }),
	bind(IDClientGetGroups, "client_get_groups", func(vt *VTable) *func(ffi.Handle) ffi.Vec[ffi.Handle] { return &vt.ClientGetGroups }),
	bind(IDClientGetFriends, "client_get_friends", func(vt *VTable) *func(ffi.Handle) ffi.Vec[ffi.Handle] { return &vt.ClientGetFriends }),
	bind(IDClientClone, "client_clone", func(vt *VTable) *func(ffi.Handle) ffi.Handle { return &vt.ClientClone }),
	bind(IDClientDrop, "client_drop", func(vt *VTable) *func(ffi.Handle) { return &vt.ClientDrop }),

	bind(IDGroupGetID, "group_get_id", func(vt *VTable) *func(ffi.Handle) int64 { return &vt.GroupGetID }),
	bind(IDGroupGetName, "group_get_name", func(vt *VTable) *func(ffi.Handle) ffi.Str { return &vt.GroupGetName }),
	bind(IDGroupGetClient, "group_get_client", func(vt *VTable) *func(ffi.Handle) ffi.PHandle { return &vt.GroupGetClient }),
	bind(IDGroupGetMembers, "group_get_members", func(vt *VTable) *func(ffi.Handle) ffi.Future[ffi.Vec[ffi.ManagedCloneable]] {
		return &vt.GroupGetMembers
	}),
	bind(IDGroupFindMember, "group_find_member", func(vt *VTable) *func(ffi.Handle, int64) ffi.Future[ffi.ManagedCloneable] {
		return &vt.GroupFindMember
	}),
	bind(IDGroupSendMessage, "group_send_message", func(vt *VTable) *func(ffi.Handle, ffi.MessageChain) ffi.Future[ffi.Result[ffi.MessageReceipt]] {
		return &vt.GroupSendMessage
	}),
	bind(IDGroupUploadImage, "group_upload_image", func(vt *VTable) *func(ffi.Handle, ffi.Vec[byte]) ffi.Future[ffi.Result[ffi.ManagedCloneable]] {
		return &vt.GroupUploadImage
	}),
	bind(IDGroupQuit, "group_quit", func(vt *VTable) *func(ffi.Handle) ffi.Future[bool] { return &vt.GroupQuit }),
	bind(IDGroupChangeName, "group_change_name", func(vt *VTable) *func(ffi.Handle, ffi.Str) ffi.Future[ffi.Result[Unit]] {
		return &vt.GroupChangeName
	}),
	bind(IDGroupSendForwardMessage, "group_send_forward_message", func(vt *VTable) *func(ffi.Handle, ffi.Vec[ffi.ForwardNode]) ffi.Future[ffi.Result[ffi.MessageReceipt]] {
		return &vt.GroupSendForwardMessage
	}),
	bind(IDGroupInvite, "group_invite", func(vt *VTable) *func(ffi.Handle, int64) ffi.Future[ffi.Result[Unit]] {
		return &vt.GroupInvite
	}),
	bind(IDGroupClone, "group_clone", func(vt *VTable) *func(ffi.Handle) ffi.Handle { return &vt.GroupClone }),
	bind(IDGroupDrop, "group_drop", func(vt *VTable) *func(ffi.Handle) { return &vt.GroupDrop }),

	bind(IDFriendGetID, "friend_get_id", func(vt *VTable) *func(ffi.Handle) int64 { return &vt.FriendGetID }),
	bind(IDFriendGetNickname, "friend_get_nickname", func(vt *VTable) *func(ffi.Handle) ffi.Str { return &vt.FriendGetNickname }),
	bind(IDFriendGetClient, "friend_get_client", func(vt *VTable) *func(ffi.Handle) ffi.PHandle { return &vt.FriendGetClient }),
	bind(IDFriendSendMessage, "friend_send_message", func(vt *VTable) *func(ffi.Handle, ffi.MessageChain) ffi.Future[ffi.Result[ffi.MessageReceipt]] {
		return &vt.FriendSendMessage
	}),
	bind(IDFriendUploadImage, "friend_upload_image", func(vt *VTable) *func(ffi.Handle, ffi.Vec[byte]) ffi.Future[ffi.Result[ffi.ManagedCloneable]] {
		return &vt.FriendUploadImage
	}),
	bind(IDFriendClone, "friend_clone", func(vt *VTable) *func(ffi.Handle) ffi.Handle { return &vt.FriendClone }),
	bind(IDFriendDrop, "friend_drop", func(vt *VTable) *func(ffi.Handle) { return &vt.FriendDrop }),

	bind(IDNamedMemberGetID, "named_member_get_id", func(vt *VTable) *func(unsafe.Pointer) int64 { return &vt.NamedMemberGetID }),
	bind(IDNamedMemberGetNickname, "named_member_get_nickname", func(vt *VTable) *func(unsafe.Pointer) ffi.Str {
		return &vt.NamedMemberGetNickname
	}),
	bind(IDNamedMemberGetCardName, "named_member_get_card_name", func(vt *VTable) *func(unsafe.Pointer) ffi.Str {
		return &vt.NamedMemberGetCardName
	}),
	bind(IDNamedMemberGetGroup, "named_member_get_group", func(vt *VTable) *func(unsafe.Pointer) ffi.PHandle {
		return &vt.NamedMemberGetGroup
	}),
	bind(IDNamedMemberChangeCardName, "named_member_change_card_name", func(vt *VTable) *func(unsafe.Pointer, ffi.Str) ffi.Future[ffi.Result[Unit]] {
		return &vt.NamedMemberChangeCardName
	}),

	bind(IDImageGetID, "image_get_id", func(vt *VTable) *func(unsafe.Pointer) ffi.Str { return &vt.ImageGetID }),
	bind(IDImageGetURL, "image_get_url", func(vt *VTable) *func(unsafe.Pointer) ffi.String { return &vt.ImageGetURL }),

	bind(IDGroupMessageEventGetGroup, "group_message_event_get_group", func(vt *VTable) *func(unsafe.Pointer) ffi.PHandle {
		return &vt.GroupMessageEventGetGroup
	}),
	bind(IDGroupMessageEventGetMessage, "group_message_event_get_message", func(vt *VTable) *func(unsafe.Pointer) ffi.MessageChain {
		return &vt.GroupMessageEventGetMessage
	}),
	bind(IDGroupMessageEventGetSender, "group_message_event_get_sender", func(vt *VTable) *func(unsafe.Pointer) ffi.Member {
		return &vt.GroupMessageEventGetSender
	}),

	bind(IDFriendMessageEventGetFriend, "friend_message_event_get_friend", func(vt *VTable) *func(unsafe.Pointer) ffi.PHandle {
		return &vt.FriendMessageEventGetFriend
	}),
	bind(IDFriendMessageEventGetMessage, "friend_message_event_get_message", func(vt *VTable) *func(unsafe.Pointer) ffi.MessageChain {
		return &vt.FriendMessageEventGetMessage
	}),

	bind(IDLog, "log", func(vt *VTable) *func(uintptr, unsafe.Pointer, uint8, ffi.Str) { return &vt.Log }),

	bind(IDEnvGetWorkspace, "env_get_workspace", func(vt *VTable) *func(uintptr, unsafe.Pointer) ffi.String {
		return &vt.EnvGetWorkspace
	}),

	bind(IDMessageChainToJSON, "message_chain_to_json", func(vt *VTable) *func(ffi.MessageChain) ffi.String {
		return &vt.MessageChainToJSON
	}),
	bind(IDMessageChainFromJSON, "message_chain_from_json", func(vt *VTable) *func(ffi.Str) ffi.Result[ffi.MessageChain] {
		return &vt.MessageChainFromJSON
	}),
}

// Bindings lists every slot the VTable resolves, in resolution order.
func Bindings() []Binding {
	out := make([]Binding, len(bindings))
	for i, b := range bindings {
		out[i] = b.Binding
	}
	return out
}

func resolve(get ffi.Lookup) *VTable {
	vt := new(VTable)
	for _, b := range bindings {
		*(*unsafe.Pointer)(b.slot(vt)) = get(b.ID)
	}
	return vt
}

// Slot returns the raw function stored for id, or nil when id is not a
// known slot or the host did not provide it.
func (vt *VTable) Slot(id uint16) unsafe.Pointer {
	for _, b := range bindings {
		if b.ID == id {
			return *(*unsafe.Pointer)(b.slot(vt))
		}
	}
	return nil
}
