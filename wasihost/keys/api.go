package keys

import (
	"github.com/foxxorcat/setwaker/wasihost"
	v0_1 "github.com/foxxorcat/setwaker/wasihost/keys/v0_1"
)

// Module 返回一个配置好的 setwaker:keys 模块选项。
// 用户通过调用 wasihost.NewHost(keys.Module("0.1.0")) 来启用此模块。
func Module(version string) wasihost.ModuleOption {
	return func(h *wasihost.Host) {
		var notifierImpl wasihost.Implementation

		switch version {
		case "0.1", "0.1.0":
			notifierImpl = v0_1.NewNotifier()
		default:
			return
		}
		h.AddImplementation(notifierImpl)
	}
}
