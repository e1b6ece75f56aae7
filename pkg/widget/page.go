package widget

// The embedded widget page: floating toggle button plus chat panel.
// Entries arrive from /widget/poll with server-rendered HTML, so the
// script only reflects state and never interprets reply markup itself.
var widgetHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>__TITLE__</title>
<style>
:root{
  --accent:#2e7d32;--accent-hover:#27662a;
  --bg:#ffffff;--border:#dadce0;--muted:#5f6368;
  --user-bg:#2e7d32;--assistant-bg:#f1f3f4;--notice-bg:#fdecea;
}
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:system-ui,-apple-system,'Segoe UI',sans-serif}
#cw-toggle{
  position:fixed;right:24px;bottom:24px;width:56px;height:56px;
  background:var(--accent);color:#fff;border:none;border-radius:50%;
  cursor:pointer;box-shadow:0 4px 12px rgba(0,0,0,.25);
  display:flex;align-items:center;justify-content:center;z-index:9999;
}
#cw-toggle:hover{background:var(--accent-hover)}
#cw-toggle svg{width:26px;height:26px}
#cw-panel{
  position:fixed;right:24px;bottom:92px;width:360px;max-width:calc(100vw - 32px);
  height:520px;max-height:calc(100vh - 120px);
  background:var(--bg);border:1px solid var(--border);border-radius:14px;
  box-shadow:0 8px 28px rgba(0,0,0,.22);
  display:none;flex-direction:column;overflow:hidden;z-index:9999;
}
#cw-panel.open{display:flex}
#cw-header{
  padding:14px 16px;background:var(--accent);color:#fff;
  display:flex;align-items:center;justify-content:space-between;
}
#cw-header h1{font-size:15px;font-weight:600}
#cw-close{background:none;border:none;color:#fff;font-size:18px;cursor:pointer}
#cw-messages{flex:1;overflow-y:auto;padding:14px;display:flex;flex-direction:column;gap:10px}
.cw-msg{max-width:85%;padding:9px 13px;border-radius:14px;font-size:14px;line-height:1.5;word-wrap:break-word}
.cw-msg.user{align-self:flex-end;background:var(--user-bg);color:#fff;border-bottom-right-radius:5px}
.cw-msg.assistant{align-self:flex-start;background:var(--assistant-bg);border-bottom-left-radius:5px}
.cw-msg.notice{align-self:center;background:var(--notice-bg);color:#b3261e;font-size:13px;text-align:center}
.cw-msg p{margin:0}
.cw-msg p+p{margin-top:8px}
.cw-msg pre{background:#202124;color:#e8eaed;padding:10px;border-radius:8px;overflow-x:auto;margin:6px 0;font-size:13px}
.cw-msg code{font-family:Consolas,monospace;font-size:13px}
.cw-msg a{color:var(--accent)}
.cw-msg.user a{color:#c8e6c9}
#cw-typing{min-height:22px;padding:0 16px;font-size:12px;color:var(--muted)}
#cw-input-area{display:flex;align-items:flex-end;gap:8px;padding:10px 12px;border-top:1px solid var(--border)}
#cw-input{
  flex:1;border:1px solid var(--border);border-radius:10px;padding:9px 12px;
  font-size:14px;font-family:inherit;resize:none;outline:none;
  max-height:110px;line-height:1.4;
}
#cw-input:focus{border-color:var(--accent)}
#cw-send{
  width:38px;height:38px;background:var(--accent);color:#fff;border:none;
  border-radius:10px;cursor:pointer;display:flex;align-items:center;justify-content:center;
}
#cw-send:disabled{opacity:.4;cursor:not-allowed}
#cw-send svg{width:17px;height:17px}
</style>
</head>
<body>
<button id="cw-toggle" aria-label="Abrir chat">
  <svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M21 15a2 2 0 01-2 2H7l-4 4V5a2 2 0 012-2h14a2 2 0 012 2z"/></svg>
</button>
<div id="cw-panel" role="dialog" aria-label="__TITLE__">
  <div id="cw-header"><h1>__TITLE__</h1><button id="cw-close" aria-label="Cerrar">&times;</button></div>
  <div id="cw-messages"></div>
  <div id="cw-typing"></div>
  <div id="cw-input-area">
    <textarea id="cw-input" rows="1" placeholder="Escribí tu consulta..." aria-label="Mensaje"></textarea>
    <button id="cw-send" aria-label="Enviar"><svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><line x1="22" y1="2" x2="11" y2="13"/><polygon points="22 2 15 22 11 13 2 9 22 2"/></svg></button>
  </div>
</div>
<script>
var panel=document.getElementById("cw-panel"),
    toggle=document.getElementById("cw-toggle"),
    closeBtn=document.getElementById("cw-close"),
    msgsEl=document.getElementById("cw-messages"),
    typingEl=document.getElementById("cw-typing"),
    input=document.getElementById("cw-input"),
    sendBtn=document.getElementById("cw-send");
var isOpen=false,lastCount=-1;

function setOpen(open){
  isOpen=open;
  panel.classList.toggle("open",open);
  fetch(open?"/widget/open":"/widget/close",{method:"POST"});
  if(open)input.focus();
}
toggle.onclick=function(){setOpen(!isOpen)};
closeBtn.onclick=function(){setOpen(false)};
document.addEventListener("keydown",function(e){
  if(e.key==="Escape"&&isOpen)setOpen(false);
});

function reflect(snap){
  if(snap.entries.length!==lastCount){
    lastCount=snap.entries.length;
    msgsEl.innerHTML="";
    for(var i=0;i<snap.entries.length;i++){
      var e=snap.entries[i];
      var div=document.createElement("div");
      div.className="cw-msg "+(e.kind==="notice"?"notice":e.role);
      div.innerHTML=e.html;
      msgsEl.appendChild(div);
    }
    msgsEl.scrollTop=msgsEl.scrollHeight;
  }
  typingEl.textContent=snap.typing?"__TITLE__ está escribiendo...":"";
  sendBtn.disabled=!snap.inputEnabled;
  input.disabled=!snap.inputEnabled;
  if(snap.focusInput&&isOpen)input.focus();
}

function poll(){
  fetch("/widget/poll").then(function(r){return r.json()}).then(reflect).catch(function(){});
}
setInterval(poll,1000);
poll();

function send(){
  var m=input.value;
  if(!m.trim()||sendBtn.disabled)return;
  input.value="";
  input.style.height="auto";
  fetch("/widget/send",{
    method:"POST",
    headers:{"Content-Type":"application/json"},
    body:JSON.stringify({message:m})
  }).then(poll).catch(function(){});
}
sendBtn.onclick=send;
input.onkeydown=function(e){
  if(e.key==="Enter"&&!e.shiftKey&&!e.ctrlKey&&!e.altKey&&!e.metaKey){
    e.preventDefault();
    send();
  }
};
input.oninput=function(){
  input.style.height="auto";
  input.style.height=Math.min(input.scrollHeight,110)+"px";
};
</script>
</body>
</html>`
