package scorm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LaunchPage 启动页参数；Token+AttemptID拼出运行时回传端点
type LaunchPage struct {
	AttemptID      uint
	Token          string
	LaunchAssetURL string
	PackageTitle   string
	RuntimeState   map[string]string
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// SerializeLaunchHTML 输出自包含的启动页：iframe加载课件入口，内联脚本同时
// 暴露SCORM 1.2的window.API和2004的window.API_1484_11。脚本把SetValue全部
// 缓冲在内存里，只在Commit/Terminate/页面卸载时往服务端写；同一时刻至多一个
// 在途提交，失败标记dirty等下次提交重试，不把网络错误抛给课件。
func SerializeLaunchHTML(input LaunchPage) (string, error) {
	safeTitle := htmlEscaper.Replace(input.PackageTitle)

	runtimeEndpoint, err := json.Marshal(fmt.Sprintf("/api/scorm/runtime/%s/%d/state", input.Token, input.AttemptID))
	if err != nil {
		return "", err
	}
	launchSrc, err := json.Marshal(input.LaunchAssetURL)
	if err != nil {
		return "", err
	}
	state := input.RuntimeState
	if state == nil {
		state = map[string]string{}
	}
	runtimeState, err := json.Marshal(state)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(launchPageTemplate, safeTitle, launchSrc, runtimeEndpoint, runtimeState), nil
}

const launchPageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>%s</title>
  <style>
    html, body {
      margin: 0;
      padding: 0;
      width: 100%%;
      height: 100%%;
      background: #09090b;
      color: #e4e4e7;
      font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace;
    }
    .frame-wrap {
      width: 100%%;
      height: 100%%;
      border: 0;
      background: #fff;
    }
    .frame-wrap iframe {
      width: 100%%;
      height: 100%%;
      border: 0;
      background: #fff;
    }
  </style>
</head>
<body>
  <div class="frame-wrap">
    <iframe id="scoFrame" title="SCORM Launch" src=%s allowfullscreen></iframe>
  </div>
  <script>
    (function () {
      var runtimeEndpoint = %s;
      var runtimeState = Object.assign({}, %s);
      var initialized = false;
      var terminated = false;
      var dirty = false;
      var lastError = "0";
      var commitInFlight = null;
      var commitPending = false;

      function ok() {
        lastError = "0";
        return "true";
      }

      function fail(code) {
        lastError = String(code);
        return "false";
      }

      function queueCommit() {
        if (!initialized) {
          return;
        }
        if (commitInFlight) {
          commitPending = true;
          return;
        }
        var payload = JSON.stringify({ runtimeState: runtimeState });
        dirty = false;
        commitInFlight = fetch(runtimeEndpoint, {
          method: "POST",
          headers: { "content-type": "application/json" },
          body: payload,
          keepalive: true
        }).catch(function () {
          dirty = true;
        }).finally(function () {
          commitInFlight = null;
          if (commitPending) {
            commitPending = false;
            queueCommit();
          }
        });
      }

      function getValue(element) {
        if (!Object.prototype.hasOwnProperty.call(runtimeState, element)) {
          return "";
        }
        var value = runtimeState[element];
        return typeof value === "string" ? value : String(value == null ? "" : value);
      }

      var API = {
        LMSInitialize: function () {
          if (initialized) return fail(101);
          initialized = true;
          terminated = false;
          return ok();
        },
        LMSFinish: function () {
          if (!initialized) return fail(301);
          if (terminated) return fail(101);
          terminated = true;
          queueCommit();
          return ok();
        },
        LMSGetValue: function (element) {
          if (!initialized) return "";
          lastError = "0";
          return getValue(String(element || ""));
        },
        LMSSetValue: function (element, value) {
          if (!initialized) return fail(301);
          if (terminated) return fail(101);
          runtimeState[String(element || "")] = value == null ? "" : String(value);
          dirty = true;
          lastError = "0";
          return "true";
        },
        LMSCommit: function () {
          if (!initialized) return fail(301);
          queueCommit();
          return ok();
        },
        LMSGetLastError: function () {
          return String(lastError);
        },
        LMSGetErrorString: function (code) {
          return String(code || lastError);
        },
        LMSGetDiagnostic: function (code) {
          return String(code || lastError);
        }
      };

      var API_1484_11 = {
        Initialize: function () { return API.LMSInitialize(""); },
        Terminate: function () { return API.LMSFinish(""); },
        GetValue: function (element) { return API.LMSGetValue(element); },
        SetValue: function (element, value) { return API.LMSSetValue(element, value); },
        Commit: function () { return API.LMSCommit(""); },
        GetLastError: function () { return API.LMSGetLastError(); },
        GetErrorString: function (code) { return API.LMSGetErrorString(code); },
        GetDiagnostic: function (code) { return API.LMSGetDiagnostic(code); }
      };

      window.API = API;
      window.API_1484_11 = API_1484_11;

      window.addEventListener("beforeunload", function () {
        try {
          if (initialized) {
            API.LMSFinish("");
          }
        } catch (error) {
          // no-op
        }
      });
    })();
  </script>
</body>
</html>`
