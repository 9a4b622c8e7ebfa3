package landing

// pageScript wires the waitlist forms and the chat demo to the JSON APIs.
const pageScript = `
(function () {
  "use strict";

  async function call(method, url, body) {
    const res = await fetch(url, {
      method: method,
      headers: body ? { "Content-Type": "application/json" } : {},
      body: body ? JSON.stringify(body) : undefined,
    });
    let envelope = { code: res.status, data: null, message: "" };
    try { envelope = await res.json(); } catch (_) {}
    return { ok: res.ok, envelope: envelope };
  }

  // The visitor's public address as the lookup service sees it. Failures
  // leave it empty and the server records "unknown".
  let publicIP = null;
  async function lookupPublicIP() {
    const endpoint = document.body.dataset.ipLookup;
    if (!endpoint) { return ""; }
    if (publicIP !== null) { return publicIP; }
    const controller = new AbortController();
    const timer = setTimeout(function () { controller.abort(); },
      Number(document.body.dataset.ipLookupTimeout) || 3000);
    try {
      const res = await fetch(endpoint, { signal: controller.signal });
      const body = res.ok ? await res.json() : {};
      publicIP = typeof body.ip === "string" ? body.ip : "";
    } catch (_) {
      publicIP = "";
    } finally {
      clearTimeout(timer);
    }
    return publicIP;
  }

  document.querySelectorAll("[data-waitlist-form]").forEach(function (form) {
    const status = form.querySelector("[data-waitlist-status]");
    const button = form.querySelector("button[type=submit]");
    let busy = false;

    form.addEventListener("submit", async function (event) {
      event.preventDefault();
      if (busy) { return; }
      busy = true;
      button.disabled = true;

      const name = form.elements.namedItem("name");
      const result = await call("POST", "/v1/waitlist", {
        email: form.elements.namedItem("email").value,
        name: name ? name.value : null,
        source: form.dataset.source,
        page_url: window.location.href,
        referrer: document.referrer,
        ip_address: await lookupPublicIP(),
      });

      status.textContent = result.envelope.message || "";
      if (!result.ok) {
        busy = false;
        button.disabled = false;
        return;
      }

      form.reset();
      const holdFor = (result.envelope.data && result.envelope.data.display_for_ms) || 3000;
      setTimeout(function () {
        status.textContent = "";
        busy = false;
        button.disabled = false;
      }, holdFor);
    });
  });

  const demo = document.querySelector("[data-demo]");
  if (!demo) { return; }

  const list = demo.querySelector("[data-demo-messages]");
  const composing = demo.querySelector("[data-demo-composing]");
  let sessionID = null;

  function render(transcript) {
    list.replaceChildren();
    transcript.messages.forEach(function (message) {
      const item = document.createElement("div");
      item.className = "chat-message " + message.role;
      const text = document.createElement("p");
      text.textContent = message.text;
      item.appendChild(text);
      (message.contacts || []).forEach(function (contact) {
        const card = document.createElement("div");
        card.className = "contact";
        card.textContent = contact.name + ", " + contact.title + " at " + contact.company +
          " (" + contact.location + ") " + contact.email + " " + contact.phone;
        item.appendChild(card);
      });
      list.appendChild(item);
    });
    composing.hidden = !transcript.composing;
    list.scrollTop = list.scrollHeight;
  }

  async function send(query) {
    if (!sessionID || !query.trim()) { return; }
    await call("POST", "/v1/demo/sessions/" + sessionID + "/messages", { query: query });
  }

  demo.querySelector("[data-demo-form]").addEventListener("submit", function (event) {
    event.preventDefault();
    const input = event.target.elements.namedItem("query");
    send(input.value);
    input.value = "";
  });

  document.querySelectorAll("[data-demo-query]").forEach(function (button) {
    button.addEventListener("click", function () { send(button.dataset.demoQuery); });
  });

  document.querySelectorAll("[data-demo-restart]").forEach(function (button) {
    button.addEventListener("click", function () {
      if (sessionID) { call("POST", "/v1/demo/sessions/" + sessionID + "/restart"); }
    });
  });

  call("POST", "/v1/demo/sessions").then(function (result) {
    if (!result.ok) { return; }
    sessionID = result.envelope.data.session_id;
    const events = new EventSource("/v1/demo/sessions/" + sessionID + "/events");
    events.addEventListener("transcript", function (event) {
      render(JSON.parse(event.data));
    });
  });
})();
`
